package blogs

import (
	"encoding/hex"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
)

// AccountID is a raw 32-byte account public key.
type AccountID [32]byte

// ParseAccount accepts an SS58 address or a 0x-prefixed hex public key.
func ParseAccount(s string) (AccountID, error) {
	var a AccountID
	if len(s) == 66 && s[:2] == "0x" {
		raw, err := hex.DecodeString(s[2:])
		if err != nil {
			return a, fmt.Errorf("%w: %v", polkadot.ErrInvalidAddress, err)
		}
		copy(a[:], raw)
		return a, nil
	}
	pub, _, err := polkadot.SS58Decode(s)
	if err != nil {
		return a, err
	}
	return AccountID(pub), nil
}

// Address renders the account in SS58 form for the given network prefix.
func (a AccountID) Address(prefix uint16) string {
	return polkadot.SS58Encode(a, prefix)
}

func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

func (a *AccountID) Decode(d scale.Decoder) error {
	return d.Read(a[:])
}

func (a AccountID) Encode(e scale.Encoder) error {
	return e.Write(a[:])
}

// Change records who touched an entity and when.
type Change struct {
	Account AccountID
	Block   uint32
	Time    uint64 // ms since epoch
}

func (c *Change) Decode(d scale.Decoder) error {
	if err := c.Account.Decode(d); err != nil {
		return err
	}
	if err := d.Decode(&c.Block); err != nil {
		return err
	}
	return d.Decode(&c.Time)
}

func (c Change) Encode(e scale.Encoder) error {
	if err := c.Account.Encode(e); err != nil {
		return err
	}
	if err := e.Encode(c.Block); err != nil {
		return err
	}
	return e.Encode(c.Time)
}

func readOptionalChange(d scale.Decoder) (*Change, error) {
	ok, err := readOption(d)
	if err != nil || !ok {
		return nil, err
	}
	var c Change
	if err := c.Decode(d); err != nil {
		return nil, err
	}
	return &c, nil
}

func writeOptionalChange(e scale.Encoder, c *Change) error {
	if err := writeOption(e, c != nil); err != nil || c == nil {
		return err
	}
	return c.Encode(e)
}

type ReactionKind uint8

const (
	Upvote ReactionKind = iota
	Downvote
)

func (k ReactionKind) String() string {
	switch k {
	case Upvote:
		return "Upvote"
	case Downvote:
		return "Downvote"
	}
	return fmt.Sprintf("ReactionKind(%d)", uint8(k))
}

// ParseReactionKind accepts "upvote"/"Upvote"/"up" and the downvote equivalents.
func ParseReactionKind(s string) (ReactionKind, error) {
	switch s {
	case "Upvote", "upvote", "up":
		return Upvote, nil
	case "Downvote", "downvote", "down":
		return Downvote, nil
	}
	return 0, fmt.Errorf("unknown reaction kind %q", s)
}

func (k *ReactionKind) Decode(d scale.Decoder) error {
	b, err := d.ReadOneByte()
	if err != nil {
		return err
	}
	if b > uint8(Downvote) {
		return fmt.Errorf("invalid reaction kind %d", b)
	}
	*k = ReactionKind(b)
	return nil
}

func (k ReactionKind) Encode(e scale.Encoder) error {
	return e.PushByte(byte(k))
}

type ExtensionKind uint8

const (
	RegularPost ExtensionKind = iota
	SharedPost
	SharedComment
)

func (k ExtensionKind) String() string {
	switch k {
	case RegularPost:
		return "RegularPost"
	case SharedPost:
		return "SharedPost"
	case SharedComment:
		return "SharedComment"
	}
	return fmt.Sprintf("ExtensionKind(%d)", uint8(k))
}

// PostExtension says whether a post is original or shares another post or comment.
// Target is the shared post or comment id and is zero for regular posts.
type PostExtension struct {
	Kind   ExtensionKind
	Target uint64
}

func (x *PostExtension) Decode(d scale.Decoder) error {
	b, err := d.ReadOneByte()
	if err != nil {
		return err
	}
	switch ExtensionKind(b) {
	case RegularPost:
		*x = PostExtension{Kind: RegularPost}
		return nil
	case SharedPost, SharedComment:
		x.Kind = ExtensionKind(b)
		return d.Decode(&x.Target)
	}
	return fmt.Errorf("invalid post extension %d", b)
}

func (x PostExtension) Encode(e scale.Encoder) error {
	if err := e.PushByte(byte(x.Kind)); err != nil {
		return err
	}
	if x.Kind == RegularPost {
		return nil
	}
	return e.Encode(x.Target)
}

type Blog struct {
	ID             uint64
	Created        Change
	Updated        *Change
	Writers        []AccountID
	Slug           string
	IpfsHash       string
	PostsCount     uint16
	FollowersCount uint32
	EditHistory    []BlogHistoryRecord
}

// Owner is the account that created the blog.
func (b *Blog) Owner() AccountID { return b.Created.Account }

func (b *Blog) Decode(d scale.Decoder) error {
	var err error
	if err = d.Decode(&b.ID); err != nil {
		return err
	}
	if err = b.Created.Decode(d); err != nil {
		return err
	}
	if b.Updated, err = readOptionalChange(d); err != nil {
		return err
	}
	if b.Writers, err = readAccounts(d); err != nil {
		return err
	}
	if b.Slug, err = readText(d); err != nil {
		return err
	}
	if b.IpfsHash, err = readText(d); err != nil {
		return err
	}
	if err = d.Decode(&b.PostsCount); err != nil {
		return err
	}
	if err = d.Decode(&b.FollowersCount); err != nil {
		return err
	}
	n, err := readLen(d)
	if err != nil {
		return err
	}
	b.EditHistory = make([]BlogHistoryRecord, n)
	for i := range b.EditHistory {
		if err := b.EditHistory[i].Decode(d); err != nil {
			return err
		}
	}
	return nil
}

func (b Blog) Encode(e scale.Encoder) error {
	steps := []func() error{
		func() error { return e.Encode(b.ID) },
		func() error { return b.Created.Encode(e) },
		func() error { return writeOptionalChange(e, b.Updated) },
		func() error { return writeAccounts(e, b.Writers) },
		func() error { return writeText(e, b.Slug) },
		func() error { return writeText(e, b.IpfsHash) },
		func() error { return e.Encode(b.PostsCount) },
		func() error { return e.Encode(b.FollowersCount) },
		func() error { return writeLen(e, len(b.EditHistory)) },
	}
	for _, r := range b.EditHistory {
		steps = append(steps, func() error { return r.Encode(e) })
	}
	return runSteps(steps)
}

type Post struct {
	ID             uint64
	BlogID         uint64
	Created        Change
	Updated        *Change
	Extension      PostExtension
	Slug           string
	IpfsHash       string
	CommentsCount  uint16
	UpvotesCount   uint16
	DownvotesCount uint16
	SharesCount    uint16
	EditHistory    []PostHistoryRecord
}

func (p *Post) Owner() AccountID { return p.Created.Account }

// Score is upvotes minus downvotes.
func (p *Post) Score() int { return int(p.UpvotesCount) - int(p.DownvotesCount) }

func (p *Post) Decode(d scale.Decoder) error {
	var err error
	if err = d.Decode(&p.ID); err != nil {
		return err
	}
	if err = d.Decode(&p.BlogID); err != nil {
		return err
	}
	if err = p.Created.Decode(d); err != nil {
		return err
	}
	if p.Updated, err = readOptionalChange(d); err != nil {
		return err
	}
	if err = p.Extension.Decode(d); err != nil {
		return err
	}
	if p.Slug, err = readText(d); err != nil {
		return err
	}
	if p.IpfsHash, err = readText(d); err != nil {
		return err
	}
	for _, c := range []*uint16{&p.CommentsCount, &p.UpvotesCount, &p.DownvotesCount, &p.SharesCount} {
		if err = d.Decode(c); err != nil {
			return err
		}
	}
	n, err := readLen(d)
	if err != nil {
		return err
	}
	p.EditHistory = make([]PostHistoryRecord, n)
	for i := range p.EditHistory {
		if err := p.EditHistory[i].Decode(d); err != nil {
			return err
		}
	}
	return nil
}

func (p Post) Encode(e scale.Encoder) error {
	steps := []func() error{
		func() error { return e.Encode(p.ID) },
		func() error { return e.Encode(p.BlogID) },
		func() error { return p.Created.Encode(e) },
		func() error { return writeOptionalChange(e, p.Updated) },
		func() error { return p.Extension.Encode(e) },
		func() error { return writeText(e, p.Slug) },
		func() error { return writeText(e, p.IpfsHash) },
		func() error { return e.Encode(p.CommentsCount) },
		func() error { return e.Encode(p.UpvotesCount) },
		func() error { return e.Encode(p.DownvotesCount) },
		func() error { return e.Encode(p.SharesCount) },
		func() error { return writeLen(e, len(p.EditHistory)) },
	}
	for _, r := range p.EditHistory {
		steps = append(steps, func() error { return r.Encode(e) })
	}
	return runSteps(steps)
}

type Comment struct {
	ID             uint64
	ParentID       *uint64
	PostID         uint64
	Created        Change
	Updated        *Change
	IpfsHash       string
	UpvotesCount   uint16
	DownvotesCount uint16
	SharesCount    uint16
	EditHistory    []CommentHistoryRecord
}

func (c *Comment) Owner() AccountID { return c.Created.Account }

func (c *Comment) Score() int { return int(c.UpvotesCount) - int(c.DownvotesCount) }

func (c *Comment) Decode(d scale.Decoder) error {
	var err error
	if err = d.Decode(&c.ID); err != nil {
		return err
	}
	if c.ParentID, err = readOptionalU64(d); err != nil {
		return err
	}
	if err = d.Decode(&c.PostID); err != nil {
		return err
	}
	if err = c.Created.Decode(d); err != nil {
		return err
	}
	if c.Updated, err = readOptionalChange(d); err != nil {
		return err
	}
	if c.IpfsHash, err = readText(d); err != nil {
		return err
	}
	for _, n := range []*uint16{&c.UpvotesCount, &c.DownvotesCount, &c.SharesCount} {
		if err = d.Decode(n); err != nil {
			return err
		}
	}
	n, err := readLen(d)
	if err != nil {
		return err
	}
	c.EditHistory = make([]CommentHistoryRecord, n)
	for i := range c.EditHistory {
		if err := c.EditHistory[i].Decode(d); err != nil {
			return err
		}
	}
	return nil
}

func (c Comment) Encode(e scale.Encoder) error {
	steps := []func() error{
		func() error { return e.Encode(c.ID) },
		func() error { return writeOptionalU64(e, c.ParentID) },
		func() error { return e.Encode(c.PostID) },
		func() error { return c.Created.Encode(e) },
		func() error { return writeOptionalChange(e, c.Updated) },
		func() error { return writeText(e, c.IpfsHash) },
		func() error { return e.Encode(c.UpvotesCount) },
		func() error { return e.Encode(c.DownvotesCount) },
		func() error { return e.Encode(c.SharesCount) },
		func() error { return writeLen(e, len(c.EditHistory)) },
	}
	for _, r := range c.EditHistory {
		steps = append(steps, func() error { return r.Encode(e) })
	}
	return runSteps(steps)
}

type Reaction struct {
	ID      uint64
	Created Change
	Updated *Change
	Kind    ReactionKind
}

func (r *Reaction) Decode(d scale.Decoder) error {
	var err error
	if err = d.Decode(&r.ID); err != nil {
		return err
	}
	if err = r.Created.Decode(d); err != nil {
		return err
	}
	if r.Updated, err = readOptionalChange(d); err != nil {
		return err
	}
	return r.Kind.Decode(d)
}

func (r Reaction) Encode(e scale.Encoder) error {
	return runSteps([]func() error{
		func() error { return e.Encode(r.ID) },
		func() error { return r.Created.Encode(e) },
		func() error { return writeOptionalChange(e, r.Updated) },
		func() error { return r.Kind.Encode(e) },
	})
}

type Profile struct {
	Created     Change
	Updated     *Change
	Username    string
	IpfsHash    string
	EditHistory []ProfileHistoryRecord
}

func (p *Profile) Decode(d scale.Decoder) error {
	var err error
	if err = p.Created.Decode(d); err != nil {
		return err
	}
	if p.Updated, err = readOptionalChange(d); err != nil {
		return err
	}
	if p.Username, err = readText(d); err != nil {
		return err
	}
	if p.IpfsHash, err = readText(d); err != nil {
		return err
	}
	n, err := readLen(d)
	if err != nil {
		return err
	}
	p.EditHistory = make([]ProfileHistoryRecord, n)
	for i := range p.EditHistory {
		if err := p.EditHistory[i].Decode(d); err != nil {
			return err
		}
	}
	return nil
}

func (p Profile) Encode(e scale.Encoder) error {
	steps := []func() error{
		func() error { return p.Created.Encode(e) },
		func() error { return writeOptionalChange(e, p.Updated) },
		func() error { return writeText(e, p.Username) },
		func() error { return writeText(e, p.IpfsHash) },
		func() error { return writeLen(e, len(p.EditHistory)) },
	}
	for _, r := range p.EditHistory {
		steps = append(steps, func() error { return r.Encode(e) })
	}
	return runSteps(steps)
}

// SocialAccount exists for every account that followed or was followed; the profile is optional.
type SocialAccount struct {
	FollowersCount         uint32
	FollowingAccountsCount uint16
	FollowingBlogsCount    uint16
	Profile                *Profile
}

func (s *SocialAccount) Decode(d scale.Decoder) error {
	if err := d.Decode(&s.FollowersCount); err != nil {
		return err
	}
	if err := d.Decode(&s.FollowingAccountsCount); err != nil {
		return err
	}
	if err := d.Decode(&s.FollowingBlogsCount); err != nil {
		return err
	}
	ok, err := readOption(d)
	if err != nil || !ok {
		s.Profile = nil
		return err
	}
	s.Profile = &Profile{}
	return s.Profile.Decode(d)
}

func (s SocialAccount) Encode(e scale.Encoder) error {
	return runSteps([]func() error{
		func() error { return e.Encode(s.FollowersCount) },
		func() error { return e.Encode(s.FollowingAccountsCount) },
		func() error { return e.Encode(s.FollowingBlogsCount) },
		func() error { return writeOption(e, s.Profile != nil) },
		func() error {
			if s.Profile == nil {
				return nil
			}
			return s.Profile.Encode(e)
		},
	})
}

func runSteps(steps []func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
