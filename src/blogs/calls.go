package blogs

import "github.com/centrifuge/go-substrate-rpc-client/v4/scale"

// Call is a pallet call in "module.method" form with its positional arguments.
type Call struct {
	Name string
	Args []any
}

// OptionalID encodes an Option<u64> call argument.
type OptionalID struct {
	Value *uint64
}

func (o OptionalID) Encode(e scale.Encoder) error {
	return writeOptionalU64(e, o.Value)
}

func CreateBlog(slug, hash string) Call {
	return Call{"blogs.createBlog", []any{slug, hash}}
}

func UpdateBlog(id uint64, u BlogUpdate) Call {
	return Call{"blogs.updateBlog", []any{id, u}}
}

func CreatePost(blogID uint64, slug, hash string, ext PostExtension) Call {
	return Call{"blogs.createPost", []any{blogID, slug, hash, ext}}
}

func UpdatePost(id uint64, u PostUpdate) Call {
	return Call{"blogs.updatePost", []any{id, u}}
}

func CreateComment(postID uint64, parentID *uint64, hash string) Call {
	return Call{"blogs.createComment", []any{postID, OptionalID{parentID}, hash}}
}

func UpdateComment(id uint64, u CommentUpdate) Call {
	return Call{"blogs.updateComment", []any{id, u}}
}

func CreateProfile(username, hash string) Call {
	return Call{"blogs.createProfile", []any{username, hash}}
}

func UpdateProfile(u ProfileUpdate) Call {
	return Call{"blogs.updateProfile", []any{u}}
}

func FollowBlog(id uint64) Call   { return Call{"blogs.followBlog", []any{id}} }
func UnfollowBlog(id uint64) Call { return Call{"blogs.unfollowBlog", []any{id}} }

func FollowAccount(a AccountID) Call   { return Call{"blogs.followAccount", []any{a}} }
func UnfollowAccount(a AccountID) Call { return Call{"blogs.unfollowAccount", []any{a}} }

func SharePostCall(id uint64) Call      { return Call{"blogs.sharePost", []any{id}} }
func UnsharePostCall(id uint64) Call    { return Call{"blogs.unsharePost", []any{id}} }
func ShareCommentCall(id uint64) Call   { return Call{"blogs.shareComment", []any{id}} }
func UnshareCommentCall(id uint64) Call { return Call{"blogs.unshareComment", []any{id}} }

// ReactionTarget is the kind of entity a reaction applies to.
type ReactionTarget string

const (
	TargetPost    ReactionTarget = "post"
	TargetComment ReactionTarget = "comment"
)

func (t ReactionTarget) title() string {
	if t == TargetComment {
		return "Comment"
	}
	return "Post"
}

func CreateReaction(t ReactionTarget, id uint64, kind ReactionKind) Call {
	return Call{"blogs.create" + t.title() + "Reaction", []any{id, kind}}
}

func UpdateReaction(t ReactionTarget, id, reactionID uint64, kind ReactionKind) Call {
	return Call{"blogs.update" + t.title() + "Reaction", []any{id, reactionID, kind}}
}

func DeleteReaction(t ReactionTarget, id, reactionID uint64) Call {
	return Call{"blogs.delete" + t.title() + "Reaction", []any{id, reactionID}}
}
