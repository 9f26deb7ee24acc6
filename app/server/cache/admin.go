package cache

import (
	"admin-backend/app/server/constants"
	"admin-backend/app/server/metrics"
	"admin-backend/app/server/models"
	"admin-backend/app/server/store"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"time"
)

var _ store.AdminStore = (*AdminStore)(nil)

// AdminStore 在 store 之前加一层按邮箱的 Redis 缓存，写操作会清理对应的键
type AdminStore struct {
	next store.AdminStore
	rdb  *redis.Client
	ttl  time.Duration
	l    *zap.Logger
	m    *metrics.Metrics
}

func NewAdminStore(next store.AdminStore, rdb *redis.Client, ttl time.Duration, l *zap.Logger, m *metrics.Metrics) *AdminStore {
	if ttl <= 0 {
		ttl = constants.CacheExpireAdminInfo
	}
	return &AdminStore{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		l:    l,
		m:    m,
	}
}

func emailKey(email string) string {
	return fmt.Sprintf(constants.CacheKeyAdminByEmail, email)
}

func generationKey(email string) string {
	return fmt.Sprintf(constants.CacheKeyAdminGenerationEmail, email)
}

// 读取数据库期间记录被修改过，不再写入缓存
var errStaleFill = errors.New("admin changed while loading")

func (s *AdminStore) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	cacheKey := emailKey(email)

	// 查询缓存
	if cacheBytes, err := s.rdb.Get(ctx, cacheKey).Bytes(); err != nil {
		if !errors.Is(err, redis.Nil) {
			s.l.Error("failed to query cache for admin info", zap.String("email", email), zap.Error(err))
			s.m.CacheLookup(metrics.CacheError)
		} else {
			s.m.CacheLookup(metrics.CacheMiss)
		}
	} else if err = json.Unmarshal(cacheBytes, &admin); err != nil {
		s.l.Error("failed to unmarshal admin info", zap.String("email", email), zap.Error(err))
		s.m.CacheLookup(metrics.CacheError)
		// 可能是无效的缓存，清理掉
		s.rdb.Del(ctx, cacheKey)
	} else {
		s.m.CacheLookup(metrics.CacheHit)
		return &admin, nil
	}

	// 查询数据库之前先取得版本号
	gen, genErr := s.rdb.Get(ctx, generationKey(email)).Int64()
	if errors.Is(genErr, redis.Nil) {
		gen, genErr = 0, nil
	}

	// 查询数据库
	found, err := s.next.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// 版本号未知时不写缓存
	if genErr != nil {
		s.l.Warn("failed to read admin cache generation", zap.String("email", email), zap.Error(genErr))
		return found, nil
	}

	// 格式化并加入缓存，方便下一次查询
	if err = s.fill(ctx, email, gen, found); err != nil {
		if errors.Is(err, errStaleFill) {
			s.l.Debug("skip caching stale admin info", zap.String("email", email))
		} else {
			s.l.Error("failed to cache admin info", zap.String("email", email), zap.Error(err))
		}
	}

	return found, nil
}

// fill 只在版本号仍为 gen 时写入缓存， WATCH 保证检查和写入之间没有其他写操作
func (s *AdminStore) fill(ctx context.Context, email string, gen int64, admin *models.Admin) error {
	cacheBytes, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("marshal admin info: %w", err)
	}

	genKey := generationKey(email)
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, emailKey(email), cacheBytes, s.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return errStaleFill
	}

	return err
}

func (s *AdminStore) FindByID(ctx context.Context, id uint) (*models.Admin, error) {
	return s.next.FindByID(ctx, id)
}

func (s *AdminStore) Insert(ctx context.Context, req store.CreateAdmin) (*models.Admin, error) {
	return s.next.Insert(ctx, req)
}

func (s *AdminStore) UpdateFields(ctx context.Context, id uint, update store.Update) error {
	// 先取得旧邮箱，修改邮箱后旧键也要失效
	old, err := s.next.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err = s.next.UpdateFields(ctx, id, update); err != nil {
		return err
	}

	emails := []string{old.Email}
	if u, ok := update.(store.UpdateEmail); ok && u.Email != old.Email {
		emails = append(emails, u.Email)
	}

	return s.invalidate(ctx, emails...)
}

func (s *AdminStore) Delete(ctx context.Context, id uint) error {
	old, err := s.next.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err = s.next.Delete(ctx, id); err != nil {
		return err
	}

	return s.invalidate(ctx, old.Email)
}

func (s *AdminStore) List(ctx context.Context, q store.ListQuery) ([]models.Admin, int64, error) {
	return s.next.List(ctx, q)
}

func (s *AdminStore) Count(ctx context.Context) (int64, error) {
	return s.next.Count(ctx)
}

// invalidate 递增版本号并删除缓存，失败时返回错误
func (s *AdminStore) invalidate(ctx context.Context, emails ...string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, email := range emails {
			pipe.Incr(ctx, generationKey(email))
			pipe.Del(ctx, emailKey(email))
		}
		return nil
	})
	if err != nil {
		s.l.Error("failed to invalidate admin cache", zap.Strings("emails", emails), zap.Error(err))
		return fmt.Errorf("invalidate admin cache: %w", err)
	}

	return nil
}
