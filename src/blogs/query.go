package blogs

import (
	"context"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
)

// Querier reads blogs storage once. *polkadot.Client implements it.
type Querier interface {
	Query(ctx context.Context, item string, params ...[]byte) ([]byte, bool, error)
}

func DecodeBlog(raw []byte) (*Blog, error)       { return decodeValue[Blog](raw) }
func DecodePost(raw []byte) (*Post, error)       { return decodeValue[Post](raw) }
func DecodeComment(raw []byte) (*Comment, error) { return decodeValue[Comment](raw) }
func DecodeReaction(raw []byte) (*Reaction, error) {
	return decodeValue[Reaction](raw)
}
func DecodeSocialAccount(raw []byte) (*SocialAccount, error) {
	return decodeValue[SocialAccount](raw)
}

// Encode returns the SCALE bytes of any pallet value; used to build storage fixtures.
func Encode(v interface{ Encode(scale.Encoder) error }) ([]byte, error) {
	return encodeValue(v)
}

type idList []uint64

func (l *idList) Decode(d scale.Decoder) error {
	n, err := readLen(d)
	if err != nil {
		return err
	}
	*l = make(idList, n)
	for i := range *l {
		if err := d.Decode(&(*l)[i]); err != nil {
			return err
		}
	}
	return nil
}

type accountList []AccountID

func (l *accountList) Decode(d scale.Decoder) error {
	accs, err := readAccounts(d)
	*l = accs
	return err
}

type u64Value uint64

func (v *u64Value) Decode(d scale.Decoder) error {
	var x uint64
	err := d.Decode(&x)
	*v = u64Value(x)
	return err
}

type boolValue bool

func (v *boolValue) Decode(d scale.Decoder) error {
	b, err := d.ReadOneByte()
	*v = b == 1
	return err
}

func get[T any, P decodable[T]](ctx context.Context, q Querier, item string, params ...[]byte) (*T, error) {
	raw, ok, err := q.Query(ctx, item, params...)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	v, err := decodeValue[T, P](raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", item, err)
	}
	return v, nil
}

// Entity reads; a nil result with nil error means the entity does not exist.

func GetBlog(ctx context.Context, q Querier, id uint64) (*Blog, error) {
	return get[Blog](ctx, q, "blogById", polkadot.EncodeU64(id))
}

func GetPost(ctx context.Context, q Querier, id uint64) (*Post, error) {
	return get[Post](ctx, q, "postById", polkadot.EncodeU64(id))
}

func GetComment(ctx context.Context, q Querier, id uint64) (*Comment, error) {
	return get[Comment](ctx, q, "commentById", polkadot.EncodeU64(id))
}

func GetReaction(ctx context.Context, q Querier, id uint64) (*Reaction, error) {
	return get[Reaction](ctx, q, "reactionById", polkadot.EncodeU64(id))
}

func GetSocialAccount(ctx context.Context, q Querier, acc AccountID) (*SocialAccount, error) {
	return get[SocialAccount](ctx, q, "socialAccountById", acc[:])
}

func ids(ctx context.Context, q Querier, item string, params ...[]byte) ([]uint64, error) {
	l, err := get[idList](ctx, q, item, params...)
	if err != nil || l == nil {
		return nil, err
	}
	return *l, nil
}

func accounts(ctx context.Context, q Querier, item string, params ...[]byte) ([]AccountID, error) {
	l, err := get[accountList](ctx, q, item, params...)
	if err != nil || l == nil {
		return nil, err
	}
	return *l, nil
}

func flag(ctx context.Context, q Querier, item string, params ...[]byte) (bool, error) {
	v, err := get[boolValue](ctx, q, item, params...)
	if err != nil || v == nil {
		return false, err
	}
	return bool(*v), nil
}

// nextID reads a NextXId counter; ids start at 1.
func nextID(ctx context.Context, q Querier, item string) (uint64, error) {
	v, err := get[u64Value](ctx, q, item)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 1, nil
	}
	return uint64(*v), nil
}

func NextBlogID(ctx context.Context, q Querier) (uint64, error) {
	return nextID(ctx, q, "nextBlogId")
}

func NextPostID(ctx context.Context, q Querier) (uint64, error) {
	return nextID(ctx, q, "nextPostId")
}

func NextCommentID(ctx context.Context, q Querier) (uint64, error) {
	return nextID(ctx, q, "nextCommentId")
}

func PostIDsByBlog(ctx context.Context, q Querier, blogID uint64) ([]uint64, error) {
	return ids(ctx, q, "postIdsByBlogId", polkadot.EncodeU64(blogID))
}

func CommentIDsByPost(ctx context.Context, q Querier, postID uint64) ([]uint64, error) {
	return ids(ctx, q, "commentIdsByPostId", polkadot.EncodeU64(postID))
}

func BlogIDsByOwner(ctx context.Context, q Querier, owner AccountID) ([]uint64, error) {
	return ids(ctx, q, "blogIdsByOwner", owner[:])
}

func BlogsFollowedByAccount(ctx context.Context, q Querier, acc AccountID) ([]uint64, error) {
	return ids(ctx, q, "blogsFollowedByAccount", acc[:])
}

func ReactionIDs(ctx context.Context, q Querier, t ReactionTarget, id uint64) ([]uint64, error) {
	return ids(ctx, q, "reactionIdsBy"+t.title()+"Id", polkadot.EncodeU64(id))
}

func BlogFollowers(ctx context.Context, q Querier, blogID uint64) ([]AccountID, error) {
	return accounts(ctx, q, "blogFollowers", polkadot.EncodeU64(blogID))
}

func AccountFollowers(ctx context.Context, q Querier, acc AccountID) ([]AccountID, error) {
	return accounts(ctx, q, "accountFollowers", acc[:])
}

func AccountsFollowedByAccount(ctx context.Context, q Querier, acc AccountID) ([]AccountID, error) {
	return accounts(ctx, q, "accountsFollowedByAccount", acc[:])
}

func IsBlogFollowed(ctx context.Context, q Querier, follower AccountID, blogID uint64) (bool, error) {
	return flag(ctx, q, "blogFollowedByAccount", follower[:], polkadot.EncodeU64(blogID))
}

func IsAccountFollowed(ctx context.Context, q Querier, follower, following AccountID) (bool, error) {
	return flag(ctx, q, "accountFollowedByAccount", follower[:], following[:])
}

func IsPostShared(ctx context.Context, q Querier, acc AccountID, postID uint64) (bool, error) {
	return flag(ctx, q, "postSharedByAccount", acc[:], polkadot.EncodeU64(postID))
}

func IsCommentShared(ctx context.Context, q Querier, acc AccountID, commentID uint64) (bool, error) {
	return flag(ctx, q, "commentSharedByAccount", acc[:], polkadot.EncodeU64(commentID))
}

// ReactionIDByAccount returns the reaction an account left on a post or comment, if any.
func ReactionIDByAccount(ctx context.Context, q Querier, t ReactionTarget, acc AccountID, id uint64) (uint64, bool, error) {
	v, err := get[u64Value](ctx, q, string(t)+"ReactionIdByAccount", acc[:], polkadot.EncodeU64(id))
	if err != nil || v == nil {
		return 0, false, err
	}
	// reaction ids start at 1; a zero default means no reaction
	return uint64(*v), *v != 0, nil
}

func AccountByUsername(ctx context.Context, q Querier, username string) (*AccountID, error) {
	key, err := encodeValue(textValue(username))
	if err != nil {
		return nil, err
	}
	return get[AccountID](ctx, q, "accountByProfileUsername", key)
}

type textValue string

func (t textValue) Encode(e scale.Encoder) error { return writeText(e, string(t)) }
