// Package seed fills an empty database with a small, plausible social graph
// for local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control the size and shape of the seeded data.
type Options struct {
	Users      int
	Password   string
	BcryptCost int
	// Rand drives every random choice; a fixed source gives a repeatable seed.
	Rand *rand.Rand
}

// Summary counts what Run created.
type Summary struct {
	Users    int
	Follows  int
	Posts    int
	Likes    int
	Comments int
}

type Seeder struct {
	db       *gorm.DB
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	posts    repositories.PostRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	logger   *zap.Logger
	now      func() time.Time
}

func New(db *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:       db,
		users:    repositories.NewPostgresUserRepository(db),
		follows:  repositories.NewPostgresFollowRepository(db),
		posts:    repositories.NewPostgresPostRepository(db),
		likes:    repositories.NewPostgresLikeRepository(db),
		comments: repositories.NewPostgresCommentRepository(db),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Reset deletes every row the application owns, children first.
func (s *Seeder) Reset(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Like{}, &models.Comment{}, &models.Post{}, &models.Follow{}, &models.User{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("reset %T: %w", model, err)
			}
		}
		s.logger.Info("existing data removed")
		return nil
	})
}

// Run creates opts.Users users, then follows, posts, likes and comments
// among them. Each user follows two to four others: the first edge is
// ACCEPTED and the rest stay PENDING.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Users < 2 {
		return nil, errors.New("seed: at least two users are required")
	}
	if len(opts.Password) < 8 {
		return nil, errors.New("seed: password must be at least 8 characters")
	}
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	// one hash serves every seeded account
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	sum := &Summary{}
	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		first := firstNames[r.Intn(len(firstNames))]
		handle := fmt.Sprintf("%s%d", strings.ToLower(first), i+1)
		user := &models.User{
			Email:        handle + "@example.com",
			Handle:       handle,
			PasswordHash: string(hash),
			Name:         first + " " + lastNames[r.Intn(len(lastNames))],
			Bio:          sentence(r, 6, 12),
			AvatarURL:    "https://i.pravatar.cc/150?u=" + handle,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, fmt.Errorf("seed user %s already exists; run with reset: %w", handle, err)
			}
			return nil, fmt.Errorf("create user %s: %w", handle, err)
		}
		users = append(users, user)
	}
	sum.Users = len(users)
	s.logger.Info("users created", zap.Int("count", sum.Users))

	for _, follower := range users {
		others := shuffledExcept(r, users, follower.ID)
		count := 2 + r.Intn(3)
		if count > len(others) {
			count = len(others)
		}
		for i, followee := range others[:count] {
			status := models.FollowPending
			if i == 0 {
				status = models.FollowAccepted
			}
			edge := &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID, Status: status}
			if err := s.follows.CreateFollow(ctx, edge); err != nil {
				return nil, fmt.Errorf("create follow %d->%d: %w", follower.ID, followee.ID, err)
			}
			sum.Follows++
		}
	}
	s.logger.Info("follows created", zap.Int("count", sum.Follows))

	now := s.now()
	var posts []*models.Post
	for _, author := range users {
		for n := 1 + r.Intn(3); n > 0; n-- {
			post := &models.Post{
				AuthorID:  author.ID,
				Body:      sentence(r, 8, 25),
				CreatedAt: now.Add(-time.Duration(r.Int63n(int64(30 * 24 * time.Hour)))).Truncate(time.Microsecond),
			}
			if r.Intn(2) == 0 {
				post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s-%d/600/400", author.Handle, n)
			}
			if err := s.posts.CreatePost(ctx, post); err != nil {
				return nil, fmt.Errorf("create post: %w", err)
			}
			posts = append(posts, post)
		}
	}
	sum.Posts = len(posts)
	s.logger.Info("posts created", zap.Int("count", sum.Posts))

	for _, post := range posts {
		likers := shuffledExcept(r, users, 0)
		for _, liker := range likers[:r.Intn(min(6, len(likers)+1))] {
			if _, err := s.likes.ToggleLike(ctx, liker.ID, post.ID); err != nil {
				return nil, fmt.Errorf("like post %d: %w", post.ID, err)
			}
			sum.Likes++
		}

		for n := r.Intn(4); n > 0; n-- {
			created := post.CreatedAt.Add(time.Duration(1+r.Intn(180)) * time.Minute)
			if created.After(now) {
				created = now
			}
			comment := &models.Comment{
				PostID:    post.ID,
				AuthorID:  users[r.Intn(len(users))].ID,
				Body:      sentence(r, 3, 12),
				CreatedAt: created,
			}
			if err := s.comments.CreateComment(ctx, comment); err != nil {
				return nil, fmt.Errorf("comment on post %d: %w", post.ID, err)
			}
			sum.Comments++
		}
	}
	s.logger.Info("likes and comments created", zap.Int("likes", sum.Likes), zap.Int("comments", sum.Comments))

	return sum, nil
}

// shuffledExcept returns users in random order without the one whose ID is
// skip. A zero skip keeps everyone.
func shuffledExcept(r *rand.Rand, users []*models.User, skip uint) []*models.User {
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.ID != skip {
			out = append(out, u)
		}
	}
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// sentence strings together between minWords and maxWords words.
func sentence(r *rand.Rand, minWords, maxWords int) string {
	n := minWords + r.Intn(maxWords-minWords+1)
	words := make([]string, n)
	for i := range words {
		words[i] = vocabulary[r.Intn(len(vocabulary))]
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ") + "."
}

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Alan", "Barbara", "Ken", "Margaret", "Dennis", "Frances", "Edsger", "Radia", "Guido"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Turing", "Liskov", "Thompson", "Hamilton", "Ritchie", "Allen", "Dijkstra", "Perlman", "Rossum"}
	vocabulary = []string{
		"coffee", "morning", "garden", "weekend", "city", "river", "book", "music",
		"friends", "today", "finally", "walked", "cooked", "built", "reading", "sunny",
		"quiet", "little", "project", "train", "mountain", "bread", "concert", "window",
		"learned", "new", "old", "great", "again", "really", "the", "a", "with", "after",
	}
)
