package forms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/ipfs"
)

// Upload states.
const (
	UploadPending     = "pending"
	UploadCommitted   = "committed"
	UploadCompensated = "compensated"
)

// Upload records one document added to the content store for a transaction.
type Upload struct {
	ID        uint64    `gorm:"primaryKey"`
	Hash      string    `gorm:"size:128;index;not null"`
	Call      string    `gorm:"size:64;not null"`
	Target    uint64    // first id argument of Call, zero when it has none
	Status    string    `gorm:"size:16;index;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName implements gorm's tabler interface.
func (Upload) TableName() string { return "content_uploads" }

// Ledger tracks uploads until their transaction settles.
type Ledger interface {
	Begin(ctx context.Context, u Upload) (uint64, error)
	Finish(ctx context.Context, id uint64, status string) error
	Pending(ctx context.Context, before time.Time) ([]Upload, error)
}

type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) Migrate() error {
	return l.db.AutoMigrate(&Upload{})
}

func (l *GormLedger) Begin(ctx context.Context, u Upload) (uint64, error) {
	u.ID, u.Status = 0, UploadPending
	if err := l.db.WithContext(ctx).Create(&u).Error; err != nil {
		return 0, fmt.Errorf("record upload %s: %w", u.Hash, err)
	}
	return u.ID, nil
}

func (l *GormLedger) Finish(ctx context.Context, id uint64, status string) error {
	return l.db.WithContext(ctx).Model(&Upload{}).Where("id = ?", id).Update("status", status).Error
}

func (l *GormLedger) Pending(ctx context.Context, before time.Time) ([]Upload, error) {
	var out []Upload
	err := l.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", UploadPending, before).
		Order("id").
		Find(&out).Error
	return out, err
}

// MemoryLedger keeps the ledger in process. It is used when no database is configured.
type MemoryLedger struct {
	mu      sync.Mutex
	next    uint64
	uploads map[uint64]*Upload
	now     func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{uploads: make(map[uint64]*Upload), now: time.Now}
}

func (l *MemoryLedger) Begin(ctx context.Context, u Upload) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	now := l.now()
	u.ID, u.Status, u.CreatedAt, u.UpdatedAt = l.next, UploadPending, now, now
	l.uploads[l.next] = &u
	return l.next, nil
}

func (l *MemoryLedger) Finish(ctx context.Context, id uint64, status string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.uploads[id]
	if !ok {
		return fmt.Errorf("upload %d not recorded", id)
	}
	u.Status = status
	u.UpdatedAt = l.now()
	return nil
}

func (l *MemoryLedger) Pending(ctx context.Context, before time.Time) ([]Upload, error) {
	return l.filter(func(u Upload) bool { return u.Status == UploadPending && u.CreatedAt.Before(before) }), nil
}

// All returns every recorded upload ordered by id.
func (l *MemoryLedger) All() []Upload {
	return l.filter(func(Upload) bool { return true })
}

func (l *MemoryLedger) filter(keep func(Upload) bool) []Upload {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Upload
	for id := uint64(1); id <= l.next; id++ {
		if u, ok := l.uploads[id]; ok && keep(*u) {
			out = append(out, *u)
		}
	}
	return out
}

// Referenced reports whether the chain already points at an upload. Sweep uses it for uploads
// whose transaction outcome was never observed.
type Referenced func(ctx context.Context, u Upload) (bool, error)

// ChainReferences checks uploads signed by acc against current chain state. Calls it cannot
// resolve count as referenced so their content is never removed blindly.
func ChainReferences(q blogs.Querier, acc blogs.AccountID) Referenced {
	return func(ctx context.Context, u Upload) (bool, error) {
		switch u.Call {
		case "blogs.createBlog":
			ids, err := blogs.BlogIDsByOwner(ctx, q, acc)
			if err != nil {
				return false, err
			}
			return anyHash(ctx, ids, u.Hash, func(ctx context.Context, id uint64) (string, error) {
				return blogHash(ctx, q, id)
			})
		case "blogs.updateBlog":
			h, err := blogHash(ctx, q, u.Target)
			return h == u.Hash, err
		case "blogs.createPost":
			ids, err := blogs.PostIDsByBlog(ctx, q, u.Target)
			if err != nil {
				return false, err
			}
			return anyHash(ctx, ids, u.Hash, func(ctx context.Context, id uint64) (string, error) {
				return postHash(ctx, q, id)
			})
		case "blogs.updatePost":
			h, err := postHash(ctx, q, u.Target)
			return h == u.Hash, err
		case "blogs.createComment":
			ids, err := blogs.CommentIDsByPost(ctx, q, u.Target)
			if err != nil {
				return false, err
			}
			return anyHash(ctx, ids, u.Hash, func(ctx context.Context, id uint64) (string, error) {
				return commentHash(ctx, q, id)
			})
		case "blogs.updateComment":
			h, err := commentHash(ctx, q, u.Target)
			return h == u.Hash, err
		case "blogs.createProfile", "blogs.updateProfile":
			sa, err := blogs.GetSocialAccount(ctx, q, acc)
			if err != nil || sa == nil || sa.Profile == nil {
				return false, err
			}
			return sa.Profile.IpfsHash == u.Hash, nil
		}
		return true, nil
	}
}

func anyHash(ctx context.Context, ids []uint64, hash string, get func(context.Context, uint64) (string, error)) (bool, error) {
	// newest first; a lost create is most likely the latest entity
	for i := len(ids) - 1; i >= 0; i-- {
		h, err := get(ctx, ids[i])
		if err != nil {
			return false, err
		}
		if h == hash {
			return true, nil
		}
	}
	return false, nil
}

func blogHash(ctx context.Context, q blogs.Querier, id uint64) (string, error) {
	b, err := blogs.GetBlog(ctx, q, id)
	if err != nil || b == nil {
		return "", err
	}
	return b.IpfsHash, nil
}

func postHash(ctx context.Context, q blogs.Querier, id uint64) (string, error) {
	p, err := blogs.GetPost(ctx, q, id)
	if err != nil || p == nil {
		return "", err
	}
	return p.IpfsHash, nil
}

func commentHash(ctx context.Context, q blogs.Querier, id uint64) (string, error) {
	c, err := blogs.GetComment(ctx, q, id)
	if err != nil || c == nil {
		return "", err
	}
	return c.IpfsHash, nil
}

// Sweep settles uploads left pending since before cutoff, e.g. by a crash between upload and
// transaction result or a submission whose outcome was never observed. When inUse is set, an
// upload the chain references is marked committed; otherwise it is removed. A failed check
// leaves the upload pending. It returns how many were removed.
func Sweep(ctx context.Context, l Ledger, store ipfs.Store, cutoff time.Time, inUse Referenced) (int, error) {
	pending, err := l.Pending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list pending uploads: %w", err)
	}
	log := zap.L().Named("forms")
	n := 0
	for _, u := range pending {
		if inUse != nil {
			used, err := inUse(ctx, u)
			if err != nil {
				log.Warn("sweep: reference check failed", zap.String("hash", u.Hash), zap.Error(err))
				continue
			}
			if used {
				if err := l.Finish(ctx, u.ID, UploadCommitted); err != nil {
					return n, err
				}
				continue
			}
		}
		if err := store.Remove(ctx, u.Hash); err != nil {
			log.Warn("sweep: remove failed", zap.String("hash", u.Hash), zap.Error(err))
			continue
		}
		if err := l.Finish(ctx, u.ID, UploadCompensated); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		log.Info("sweep: compensated stale uploads", zap.Int("count", n))
	}
	return n, nil
}
