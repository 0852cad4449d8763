// Package sequence numera documentos (factura, devolución, compra) por día.
// Con Redis usa INCR sobre una llave diaria; sin Redis cae a timestamp + sufijo aleatorio.
package sequence

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/pkg/logger"
)

const keyTTL = 48 * time.Hour

var (
	_ ports.NumberGenerator = (*RedisGenerator)(nil)
	_ ports.NumberGenerator = (*TimestampGenerator)(nil)
	_ ports.NumberGenerator = (*LocalGenerator)(nil)
	_ ports.FallbackNumbers = (*RedisGenerator)(nil)
)

// RedisGenerator numeración correlativa diaria: INV-20260219-0007.
type RedisGenerator struct {
	client   *redis.Client
	fallback ports.NumberGenerator
	log      *logger.Logger
	now      func() time.Time
}

// NewRedisClient crea el cliente y verifica conexión.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisGenerator construye el generador. Si Redis falla en Next se usa TimestampGenerator.
func NewRedisGenerator(client *redis.Client, log *logger.Logger) *RedisGenerator {
	return &RedisGenerator{
		client:   client,
		fallback: NewTimestampGenerator(),
		log:      log,
		now:      time.Now,
	}
}

// Next incrementa el contador del día para el prefijo.
func (g *RedisGenerator) Next(ctx context.Context, prefix string) (string, error) {
	day := g.now().Format("20060102")
	key := fmt.Sprintf("seq:%s:%s", strings.ToUpper(prefix), day)

	pipe := g.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("secuencia redis no disponible, usando timestamp")
		return g.fallback.Next(ctx, prefix)
	}
	return format(prefix, day, incr.Val()), nil
}

// Fallback se usa cuando el contador choca con un número ya emitido
// (llave borrada o Redis reiniciado sin persistencia).
func (g *RedisGenerator) Fallback() ports.NumberGenerator {
	g.log.Warn().Msg("número de documento repetido, usando timestamp")
	return g.fallback
}

// TimestampGenerator numeración sin estado compartido: INV-20260219-153045-1a2b3c.
type TimestampGenerator struct {
	now func() time.Time
}

// NewTimestampGenerator construye el generador por timestamp.
func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{now: time.Now}
}

// Next devuelve prefijo + fecha-hora + 6 hex de un UUID.
func (g *TimestampGenerator) Next(_ context.Context, prefix string) (string, error) {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return fmt.Sprintf("%s-%s-%s", strings.ToUpper(prefix), g.now().Format("20060102-150405"), suffix), nil
}

// LocalGenerator contador en proceso, mismo formato que Redis. Para tests y modo demo.
type LocalGenerator struct {
	mu       sync.Mutex
	counters map[string]int64
	now      func() time.Time
}

// NewLocalGenerator construye el contador local.
func NewLocalGenerator() *LocalGenerator {
	return &LocalGenerator{counters: map[string]int64{}, now: time.Now}
}

func (g *LocalGenerator) Next(_ context.Context, prefix string) (string, error) {
	day := g.now().Format("20060102")
	key := strings.ToUpper(prefix) + ":" + day
	g.mu.Lock()
	g.counters[key]++
	n := g.counters[key]
	g.mu.Unlock()
	return format(prefix, day, n), nil
}

func format(prefix, day string, n int64) string {
	return fmt.Sprintf("%s-%s-%04d", strings.ToUpper(prefix), day, n)
}
