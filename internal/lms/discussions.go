package lms

import (
	"context"
	"encoding/json"
	"fmt"
)

// Forum mirrors the subset of the remote forum record the gateway exposes.
type Forum struct {
	ID           uint   `json:"id"`
	Course       uint   `json:"course"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	Intro        string `json:"intro,omitempty"`
	NumDiscuss   int    `json:"numdiscussions,omitempty"`
	TimeModified int64  `json:"timemodified,omitempty"`
}

// Discussions proxies forum-scoped remote calls.
type Discussions struct {
	client *Client
}

// NewDiscussions constructs the discussion proxy.
func NewDiscussions(client *Client) Discussions {
	return Discussions{client: client}
}

// CourseForums lists the forums of a course.
func (p Discussions) CourseForums(ctx context.Context, courseID uint) ([]Forum, error) {
	result, err := p.client.Call(ctx, "mod_forum_get_forums_by_courses", Params{
		"courseids": []uint{courseID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course forums: %w", err)
	}

	forums := []Forum{}
	if err := decodeAt(result, "", &forums); err != nil {
		return nil, fmt.Errorf("failed to fetch course forums: %w", err)
	}

	return forums, nil
}

// ForumDiscussions lists the discussions of a forum, newest activity first.
func (p Discussions) ForumDiscussions(ctx context.Context, forumID uint, sortOrder string, page int) (json.RawMessage, error) {
	if sortOrder == "" {
		sortOrder = "timemodified"
	}

	result, err := p.client.Call(ctx, "mod_forum_get_forum_discussions", Params{
		"forumid":   forumID,
		"sortorder": sortOrder,
		"page":      page,
		"perpage":   20,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forum discussions: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// DiscussionPosts lists the posts of one discussion in creation order.
func (p Discussions) DiscussionPosts(ctx context.Context, discussionID uint) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_forum_get_discussion_posts", Params{
		"discussionid": discussionID,
		"sortorder":    "created",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discussion posts: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// AddDiscussion opens a new discussion thread in a forum.
func (p Discussions) AddDiscussion(ctx context.Context, forumID uint, subject, message string, groupID int) (json.RawMessage, error) {
	if groupID == 0 {
		groupID = -1
	}

	result, err := p.client.Call(ctx, "mod_forum_add_discussion", Params{
		"forumid": forumID,
		"subject": subject,
		"message": message,
		"groupid": groupID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add discussion: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// AddPost replies to an existing discussion post.
func (p Discussions) AddPost(ctx context.Context, postID uint, subject, message string) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_forum_add_discussion_post", Params{
		"postid":  postID,
		"subject": subject,
		"message": message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add post: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// UpdatePost edits the subject and message of a post.
func (p Discussions) UpdatePost(ctx context.Context, postID uint, subject, message string) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_forum_update_discussion_post", Params{
		"postid":  postID,
		"subject": subject,
		"message": message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// DeletePost removes a post. Availability depends on the remote site.
func (p Discussions) DeletePost(ctx context.Context, postID uint) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_forum_delete_post", Params{
		"postid": postID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// SetLockState locks or unlocks a discussion.
func (p Discussions) SetLockState(ctx context.Context, forumID, discussionID uint, locked bool) (json.RawMessage, error) {
	target := 0
	if locked {
		target = 1
	}

	result, err := p.client.Call(ctx, "mod_forum_set_lock_state", Params{
		"forumid":       forumID,
		"discussionids": []uint{discussionID},
		"targetstate":   target,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle discussion lock: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// SetPinState pins or unpins a discussion.
func (p Discussions) SetPinState(ctx context.Context, discussionID uint, pinned bool) (json.RawMessage, error) {
	target := 0
	if pinned {
		target = 1
	}

	result, err := p.client.Call(ctx, "mod_forum_set_pin_state", Params{
		"discussionid": discussionID,
		"targetstate":  target,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle discussion pin: %w", err)
	}

	return rawOrNull(result, ""), nil
}
