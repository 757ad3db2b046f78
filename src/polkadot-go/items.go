package polkadot

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

const BlogsPallet = "Blogs"

var (
	byID      = []Hasher{Twox64Concat{}}
	byAccount = []Hasher{Blake2_128Concat{}}
	byPair    = []Hasher{Blake2_128Concat{}}
	byName    = []Hasher{Blake2_128Concat{}}
	plain     = []Hasher{}
)

// blogsItems maps the query names used across the client to pallet storage entries. The
// hashers are the pallet's defaults; ResolveItems replaces them with what a runtime declares.
var blogsItems = map[string]StorageItem{
	"blogById":                   {BlogsPallet, "BlogById", byID},
	"postById":                   {BlogsPallet, "PostById", byID},
	"commentById":                {BlogsPallet, "CommentById", byID},
	"reactionById":               {BlogsPallet, "ReactionById", byID},
	"socialAccountById":          {BlogsPallet, "SocialAccountById", byAccount},
	"nextBlogId":                 {BlogsPallet, "NextBlogId", plain},
	"nextPostId":                 {BlogsPallet, "NextPostId", plain},
	"nextCommentId":              {BlogsPallet, "NextCommentId", plain},
	"postIdsByBlogId":            {BlogsPallet, "PostIdsByBlogId", byID},
	"commentIdsByPostId":         {BlogsPallet, "CommentIdsByPostId", byID},
	"blogIdsByOwner":             {BlogsPallet, "BlogIdsByOwner", byAccount},
	"blogFollowers":              {BlogsPallet, "BlogFollowers", byID},
	"blogFollowedByAccount":      {BlogsPallet, "BlogFollowedByAccount", byPair},
	"accountFollowers":           {BlogsPallet, "AccountFollowers", byAccount},
	"accountsFollowedByAccount":  {BlogsPallet, "AccountsFollowedByAccount", byAccount},
	"blogsFollowedByAccount":     {BlogsPallet, "BlogsFollowedByAccount", byAccount},
	"accountFollowedByAccount":   {BlogsPallet, "AccountFollowedByAccount", byPair},
	"postReactionIdByAccount":    {BlogsPallet, "PostReactionIdByAccount", byPair},
	"commentReactionIdByAccount": {BlogsPallet, "CommentReactionIdByAccount", byPair},
	"reactionIdsByPostId":        {BlogsPallet, "ReactionIdsByPostId", byID},
	"reactionIdsByCommentId":     {BlogsPallet, "ReactionIdsByCommentId", byID},
	"postSharedByAccount":        {BlogsPallet, "PostSharedByAccount", byPair},
	"commentSharedByAccount":     {BlogsPallet, "CommentSharedByAccount", byPair},
	"accountByProfileUsername":   {BlogsPallet, "AccountByProfileUsername", byName},
}

// Item looks up a blogs storage entry by its query name, e.g. "blogById" or "blogs.blogById".
func Item(name string) (StorageItem, error) {
	if len(name) > 6 && name[:6] == "blogs." {
		name = name[6:]
	}
	item, ok := blogsItems[name]
	if !ok {
		return StorageItem{}, fmt.Errorf("unknown storage item %q", name)
	}
	return item, nil
}

// ItemKey resolves a query name and builds its storage key.
func ItemKey(name string, params ...[]byte) ([]byte, error) {
	item, err := Item(name)
	if err != nil {
		return nil, err
	}
	return item.Key(params...)
}

// ResolveItems returns the blogs storage items with key hashers read from runtime metadata.
// Entries the metadata does not describe keep their built-in hashers and are listed in missing.
func ResolveItems(meta *types.Metadata) (items map[string]StorageItem, missing []string) {
	items = make(map[string]StorageItem, len(blogsItems))
	for name, item := range blogsItems {
		hashers, err := metadataHashers(meta, item.Pallet, item.Name)
		if err != nil {
			missing = append(missing, name)
		} else {
			item.Hashers = hashers
		}
		items[name] = item
	}
	return items, missing
}

func metadataHashers(meta *types.Metadata, pallet, name string) ([]Hasher, error) {
	if meta == nil || meta.Version != 14 {
		return nil, fmt.Errorf("%s.%s: no v14 metadata", pallet, name)
	}
	entry, err := meta.AsMetadataV14.FindStorageEntryMetadata(pallet, name)
	if err != nil {
		return nil, err
	}
	v14, ok := entry.(types.StorageEntryMetadataV14)
	if !ok {
		return nil, fmt.Errorf("%s.%s: unexpected storage entry %T", pallet, name, entry)
	}
	if v14.Type.IsPlainType {
		return []Hasher{}, nil
	}
	out := make([]Hasher, 0, len(v14.Type.AsMap.Hashers))
	for _, h := range v14.Type.AsMap.Hashers {
		hasher, err := hasherOf(h)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", pallet, name, err)
		}
		out = append(out, hasher)
	}
	return out, nil
}

func hasherOf(h types.StorageHasherV10) (Hasher, error) {
	switch {
	case h.IsBlake2_128Concat:
		return Blake2_128Concat{}, nil
	case h.IsTwox64Concat:
		return Twox64Concat{}, nil
	case h.IsIdentity:
		return Identity{}, nil
	case h.IsBlake2_128:
		return HashFunc(Blake2_128), nil
	case h.IsBlake2_256:
		return HashFunc(Blake2_256), nil
	case h.IsTwox128:
		return HashFunc(Twox128), nil
	case h.IsTwox256:
		return HashFunc(Twox256), nil
	}
	return nil, fmt.Errorf("unsupported storage hasher")
}
