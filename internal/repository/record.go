package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"goboard/internal/domain/game"
	"goboard/internal/domain/sgf"
)

// GameRecorder keeps an SGF record of the live game in Redis and archives
// finished games to MongoDB. Both backends are optional: a recorder with no
// clients silently records nothing, so the bridge runs standalone.
type GameRecorder struct {
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database

	mu     sync.Mutex
	key    string
	record *sgf.Record
}

// ArchivedGame is the document stored for a finished game.
type ArchivedGame struct {
	GameKey    string    `bson:"game_key"`
	Result     string    `bson:"result"`
	SGF        string    `bson:"sgf"`
	FinishedAt time.Time `bson:"finished_at"`
}

func NewGameRecorder(log *zap.SugaredLogger, redisClient *redis.Client, mongoDB *mongo.Database) *GameRecorder {
	return &GameRecorder{log: log, redis: redisClient, mongo: mongoDB}
}

// Start opens the record for a new game and returns its key.
func (r *GameRecorder) Start(ctx context.Context, boardW, boardH int, userColor string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.key = uuid.New().String()
	r.record = sgf.NewRecord(boardW, boardH, playerName(userColor, "B"), playerName(userColor, "W"))
	r.save(ctx)
	return r.key
}

func playerName(userColor, color string) string {
	if userColor == color {
		return "human"
	}
	return "external"
}

// RecordEvent appends a committed board update to the live record.
func (r *GameRecorder) RecordEvent(ctx context.Context, evt game.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.key == "" {
		return
	}
	switch evt.Type {
	case game.EvtMove, game.EvtPendingMovePlayed:
		r.record.AddMove(evt.Color, evt.Location)
	case game.EvtPass:
		r.record.AddPass(evt.Color)
	case game.EvtResign:
		winner := "B"
		if evt.Color == "B" {
			winner = "W"
		}
		r.finish(ctx, winner+"+Resign")
		return
	}
	r.save(ctx)
}

// Finish archives the record and closes it.
func (r *GameRecorder) Finish(ctx context.Context, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finish(ctx, result)
}

func (r *GameRecorder) finish(ctx context.Context, result string) {
	if r.key == "" {
		return
	}
	r.record.SetResult(result)
	r.save(ctx)
	if r.mongo != nil {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		doc := ArchivedGame{
			GameKey:    r.key,
			Result:     result,
			SGF:        r.record.String(),
			FinishedAt: time.Now(),
		}
		if _, err := r.mongo.Collection("games").InsertOne(ctx, doc); err != nil {
			r.log.Errorw("failed to archive game", "key", r.key, "error", err)
		}
	}
	if r.redis != nil {
		if err := r.redis.Del(context.WithoutCancel(ctx), r.recordKey()).Err(); err != nil {
			r.log.Warnw("failed to drop live record", "key", r.key, "error", err)
		}
	}
	r.key = ""
	r.record = nil
}

// Abort drops the record without archiving, for games cut short by a board
// reconfiguration.
func (r *GameRecorder) Abort(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.key == "" {
		return
	}
	if r.redis != nil {
		_ = r.redis.Del(ctx, r.recordKey()).Err()
	}
	r.key = ""
	r.record = nil
}

func (r *GameRecorder) save(ctx context.Context) {
	if r.redis == nil {
		return
	}
	if err := r.redis.Set(ctx, r.recordKey(), r.record.String(), 0).Err(); err != nil {
		r.log.Warnw("failed to save live record", "key", r.key, "error", err)
	}
}

func (r *GameRecorder) recordKey() string {
	return "record:" + r.key
}
