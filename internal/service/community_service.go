package service

import (
	"context"
	"fmt"
	"time"

	"gram-vidya/internal/metrics"
	"gram-vidya/internal/models"

	"github.com/golang/glog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventPostCreated = "community.post_created"

	// ThreadLimit is how many threads one board listing returns.
	ThreadLimit = 50
)

type CreatePostInput struct {
	Message string `json:"message" validate:"required,max=1000"`
	Course  string `json:"course" validate:"omitempty,objectid"`
}

type ReplyInput struct {
	Message string `json:"message" validate:"required,max=1000"`
}

type CommunityService struct {
	Posts     PostStore
	Users     UserStore
	Events    Publisher
	Validator *Validator
	Now       func() time.Time
}

func NewCommunityService(posts PostStore, users UserStore, events Publisher, v *Validator) *CommunityService {
	return &CommunityService{Posts: posts, Users: users, Events: events, Validator: v, Now: time.Now}
}

// ListThreads returns the newest threads with their replies oldest first. A nil
// course lists the whole board.
func (s *CommunityService) ListThreads(ctx context.Context, course *primitive.ObjectID) ([]models.PostView, error) {
	threads, err := s.Posts.FindThreads(ctx, course, ThreadLimit)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	ids := make([]primitive.ObjectID, len(threads))
	for i, t := range threads {
		ids[i] = t.ID
	}
	replies, err := s.Posts.FindReplies(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}

	authors, err := s.authors(ctx, threads, replies)
	if err != nil {
		return nil, err
	}

	byParent := make(map[primitive.ObjectID][]models.PostView, len(threads))
	for _, r := range replies {
		if r.ParentPost == nil {
			continue
		}
		byParent[*r.ParentPost] = append(byParent[*r.ParentPost], r.View(authors[r.User]))
	}
	views := make([]models.PostView, 0, len(threads))
	for _, t := range threads {
		v := t.View(authors[t.User])
		v.Replies = byParent[t.ID]
		views = append(views, v)
	}
	return views, nil
}

func (s *CommunityService) CreatePost(ctx context.Context, actor Actor, in CreatePostInput) (*models.PostView, error) {
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}
	now := s.Now().UTC()
	post := &models.Post{
		ID:        primitive.NewObjectID(),
		User:      actor.ID,
		Message:   in.Message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Course != "" {
		course, _ := primitive.ObjectIDFromHex(in.Course)
		post.Course = &course
	}
	return s.store(ctx, actor, post, "post")
}

// Reply answers a thread. Replies to a reply join the same thread so that they
// stay visible in the listing.
func (s *CommunityService) Reply(ctx context.Context, actor Actor, parentID primitive.ObjectID, in ReplyInput) (*models.PostView, error) {
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}
	parent, err := s.Posts.FindByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if parent == nil {
		return nil, notFound("Post")
	}
	thread := parent.ID
	if parent.ParentPost != nil {
		thread = *parent.ParentPost
	}

	now := s.Now().UTC()
	reply := &models.Post{
		ID:         primitive.NewObjectID(),
		User:       actor.ID,
		Message:    in.Message,
		Course:     parent.Course,
		ParentPost: &thread,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s.store(ctx, actor, reply, "reply")
}

// ToggleLike likes the post, or unlikes it when the actor already did, and returns
// the new like count.
func (s *CommunityService) ToggleLike(ctx context.Context, actor Actor, id primitive.ObjectID) (int, error) {
	post, err := s.Posts.ToggleLike(ctx, id, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("toggle like: %w", err)
	}
	if post == nil {
		return 0, notFound("Post")
	}
	return len(post.Likes), nil
}

// DeletePost removes a post and its replies. Only the author or an admin may.
func (s *CommunityService) DeletePost(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	post, err := s.Posts.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load post: %w", err)
	}
	if post == nil {
		return notFound("Post")
	}
	if post.User != actor.ID && !actor.IsAdmin() {
		return forbidden("delete this post")
	}
	if err := s.Posts.DeleteThread(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *CommunityService) store(ctx context.Context, actor Actor, post *models.Post, kind string) (*models.PostView, error) {
	if err := s.Posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	metrics.CommunityPosts.WithLabelValues(kind).Inc()

	if s.Events != nil {
		payload := map[string]interface{}{"postId": post.ID.Hex(), "userId": actor.ID.Hex(), "kind": kind}
		if post.Course != nil {
			payload["courseId"] = post.Course.Hex()
		}
		if err := s.Events.Publish(ctx, EventPostCreated, payload); err != nil {
			glog.Warningf("Failed to publish %s: %v", EventPostCreated, err)
		}
	}

	author := models.Author{ID: actor.ID, Name: actor.Name, Role: actor.Role}
	view := post.View(author)
	return &view, nil
}

func (s *CommunityService) authors(ctx context.Context, groups ...[]models.Post) (map[primitive.ObjectID]models.Author, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, posts := range groups {
		for _, p := range posts {
			if _, ok := seen[p.User]; !ok {
				seen[p.User] = struct{}{}
				ids = append(ids, p.User)
			}
		}
	}
	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	authors := make(map[primitive.ObjectID]models.Author, len(ids))
	for _, id := range ids {
		u := users[id]
		authors[id] = models.Author{ID: id, Name: u.Name, Role: u.Role}
	}
	return authors, nil
}
