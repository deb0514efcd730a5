package domain

// PostLikes is the like state of a discussion post as seen by one user.
type PostLikes struct {
	PostID    int64 `json:"post_id"`
	LikeCount int   `json:"like_count"`
	Liked     bool  `json:"liked"`
}
