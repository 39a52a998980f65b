// Package seed fills a development database with channels, videos and the
// social graph around them. Not for production use.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options controls how much data the Seeder creates.
type Options struct {
	Users            int
	VideosPerUser    int
	CommentsPerVideo int
	TweetsPerUser    int
	// SkipBcrypt stores the password unhashed, so seeded users cannot log in.
	SkipBcrypt bool
}

// DefaultOptions is a small but fully connected data set.
func DefaultOptions() Options {
	return Options{
		Users:            20,
		VideosPerUser:    5,
		CommentsPerVideo: 4,
		TweetsPerUser:    3,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users         int
	Videos        int
	Comments      int
	Tweets        int
	Likes         int
	Subscriptions int
	Playlists     int
	Views         int
}

// Seeder creates related entities in one database.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewSeeder binds a Seeder to db. A zero seed picks one from the clock.
func NewSeeder(db *gorm.DB, opts Options, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Seeder{db: db, opts: opts, rng: rand.New(rand.NewSource(seed))}
}

// ClearAll deletes every row of every persistent table.
func (s *Seeder) ClearAll() error {
	tables := database.PersistentModels()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(tables[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", tables[i], err)
		}
	}
	log.Println("✓ Cleared existing data")
	return nil
}

// Run creates users first and then everything that hangs off them.
func (s *Seeder) Run() (*Summary, error) {
	sum := &Summary{}

	users, err := s.createUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)

	videos, err := s.createVideos(users)
	if err != nil {
		return nil, fmt.Errorf("failed to create videos: %w", err)
	}
	sum.Videos = len(videos)

	comments, err := s.createComments(users, videos)
	if err != nil {
		return nil, fmt.Errorf("failed to create comments: %w", err)
	}
	sum.Comments = len(comments)

	tweets, err := s.createTweets(users)
	if err != nil {
		return nil, fmt.Errorf("failed to create tweets: %w", err)
	}
	sum.Tweets = len(tweets)

	if sum.Likes, err = s.createLikes(users, videos, comments, tweets); err != nil {
		return nil, fmt.Errorf("failed to create likes: %w", err)
	}
	if sum.Subscriptions, err = s.createSubscriptions(users); err != nil {
		return nil, fmt.Errorf("failed to create subscriptions: %w", err)
	}
	if sum.Playlists, err = s.createPlaylists(users, videos); err != nil {
		return nil, fmt.Errorf("failed to create playlists: %w", err)
	}
	if sum.Views, err = s.createViews(users, videos); err != nil {
		return nil, fmt.Errorf("failed to record views: %w", err)
	}

	log.Printf("✓ %d videos, %d comments, %d tweets, %d likes, %d subscriptions, %d playlists",
		sum.Videos, sum.Comments, sum.Tweets, sum.Likes, sum.Subscriptions, sum.Playlists)
	return sum, nil
}

func (s *Seeder) passwordHash() (string, error) {
	if s.opts.SkipBcrypt {
		return DefaultPassword, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Seeder) createUsers() ([]*models.User, error) {
	hash, err := s.passwordHash()
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		first, last := gofakeit.FirstName(), gofakeit.LastName()
		username := fmt.Sprintf("%s_%s%d", strings.ToLower(first), strings.ToLower(last), i)
		username = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
				return r
			}
			return -1
		}, username)
		if len(username) > 30 {
			username = username[len(username)-30:]
		}

		users = append(users, &models.User{
			Username:   username,
			Email:      username + "@example.com",
			FullName:   first + " " + last,
			Avatar:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
			CoverImage: fmt.Sprintf("https://picsum.photos/seed/%s/1280/320", gofakeit.UUID()),
			Password:   hash,
		})
	}
	if len(users) == 0 {
		return users, nil
	}
	return users, s.db.CreateInBatches(users, 100).Error
}

func (s *Seeder) createdAt() time.Time {
	back := time.Duration(s.rng.Intn(90*24)) * time.Hour
	return time.Now().Add(-back)
}

func (s *Seeder) createVideos(users []*models.User) ([]*models.Video, error) {
	var videos []*models.Video
	for _, u := range users {
		for i := 0; i < s.opts.VideosPerUser; i++ {
			id := gofakeit.UUID()
			at := s.createdAt()
			videos = append(videos, &models.Video{
				Title:       strings.TrimSuffix(gofakeit.Sentence(4), "."),
				Description: gofakeit.Paragraph(1, 2, 8, " "),
				Tags:        []string{gofakeit.HackerNoun(), gofakeit.BuzzWord()},
				VideoFile:   fmt.Sprintf("https://cdn.example.com/%s.mp4", id),
				Thumbnail:   fmt.Sprintf("https://picsum.photos/seed/%s/640/360", id),
				Duration:    float64(gofakeit.Number(15, 3600)),
				IsPublished: true,
				OwnerID:     u.ID,
				CreatedAt:   at,
				UpdatedAt:   at,
			})
		}
	}
	if len(videos) == 0 {
		return videos, nil
	}
	if err := s.db.CreateInBatches(videos, 100).Error; err != nil {
		return nil, err
	}

	// Roughly one in ten stays a draft.
	for _, v := range videos {
		if s.rng.Intn(10) == 0 {
			if err := s.db.Model(v).Update("is_published", false).Error; err != nil {
				return nil, err
			}
			v.IsPublished = false
		}
	}
	return videos, nil
}

func (s *Seeder) createComments(users []*models.User, videos []*models.Video) ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, v := range videos {
		if !v.IsPublished {
			continue
		}
		for i := 0; i < s.opts.CommentsPerVideo; i++ {
			author := users[s.rng.Intn(len(users))]
			comments = append(comments, &models.Comment{
				Content: gofakeit.Sentence(s.rng.Intn(12) + 3),
				VideoID: v.ID,
				OwnerID: author.ID,
			})
		}
	}
	if len(comments) == 0 {
		return comments, nil
	}
	return comments, s.db.CreateInBatches(comments, 200).Error
}

func (s *Seeder) createTweets(users []*models.User) ([]*models.Tweet, error) {
	var tweets []*models.Tweet
	for _, u := range users {
		for i := 0; i < s.opts.TweetsPerUser; i++ {
			tweets = append(tweets, &models.Tweet{
				Content: gofakeit.Sentence(s.rng.Intn(15) + 5),
				OwnerID: u.ID,
			})
		}
	}
	if len(tweets) == 0 {
		return tweets, nil
	}
	return tweets, s.db.CreateInBatches(tweets, 200).Error
}

// createLikes gives each user a random sample of each target kind. Unique
// indexes forbid duplicates, so every target is picked at most once per user.
func (s *Seeder) createLikes(users []*models.User, videos []*models.Video, comments []*models.Comment, tweets []*models.Tweet) (int, error) {
	var likes []*models.Like
	for _, u := range users {
		for _, i := range s.sample(len(videos), 5) {
			likes = append(likes, models.NewLike(u.ID, models.LikeTargetVideo, videos[i].ID))
		}
		for _, i := range s.sample(len(comments), 3) {
			likes = append(likes, models.NewLike(u.ID, models.LikeTargetComment, comments[i].ID))
		}
		for _, i := range s.sample(len(tweets), 3) {
			likes = append(likes, models.NewLike(u.ID, models.LikeTargetTweet, tweets[i].ID))
		}
	}
	if len(likes) == 0 {
		return 0, nil
	}
	return len(likes), s.db.CreateInBatches(likes, 200).Error
}

func (s *Seeder) createSubscriptions(users []*models.User) (int, error) {
	var subs []*models.Subscription
	for _, u := range users {
		for _, i := range s.sample(len(users), 4) {
			if users[i].ID == u.ID {
				continue
			}
			subs = append(subs, &models.Subscription{SubscriberID: u.ID, ChannelID: users[i].ID})
		}
	}
	if len(subs) == 0 {
		return 0, nil
	}
	return len(subs), s.db.CreateInBatches(subs, 200).Error
}

func (s *Seeder) createPlaylists(users []*models.User, videos []*models.Video) (int, error) {
	count := 0
	for _, u := range users {
		if s.rng.Intn(2) == 0 {
			continue
		}
		p := &models.Playlist{
			Name:        "Best of " + gofakeit.HackerAdjective(),
			Description: gofakeit.Sentence(6),
			OwnerID:     u.ID,
		}
		if err := s.db.Create(p).Error; err != nil {
			return count, err
		}
		for pos, i := range s.sample(len(videos), 6) {
			entry := &models.PlaylistVideo{PlaylistID: p.ID, VideoID: videos[i].ID, Position: pos}
			if err := s.db.Create(entry).Error; err != nil {
				return count, err
			}
		}
		count++
	}
	return count, nil
}

// createViews fills watch histories and bumps view counters to match.
func (s *Seeder) createViews(users []*models.User, videos []*models.Video) (int, error) {
	var entries []*models.WatchHistory
	views := map[uint]int64{}
	for _, u := range users {
		for _, i := range s.sample(len(videos), 8) {
			v := videos[i]
			if !v.IsPublished {
				continue
			}
			entries = append(entries, &models.WatchHistory{UserID: u.ID, VideoID: v.ID})
			views[v.ID]++
		}
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := s.db.CreateInBatches(entries, 200).Error; err != nil {
		return 0, err
	}
	for id, n := range views {
		if err := s.db.Model(&models.Video{}).Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + ?", n)).Error; err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

// sample returns up to k distinct indexes below n.
func (s *Seeder) sample(n, k int) []int {
	if k > n {
		k = n
	}
	return s.rng.Perm(n)[:k]
}
