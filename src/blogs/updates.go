package blogs

import "github.com/centrifuge/go-substrate-rpc-client/v4/scale"

// BlogUpdate carries only the fields that changed; nil means unchanged.
type BlogUpdate struct {
	Writers  *[]AccountID
	Slug     *string
	IpfsHash *string
}

func (u BlogUpdate) IsEmpty() bool {
	return u.Writers == nil && u.Slug == nil && u.IpfsHash == nil
}

func (u *BlogUpdate) Decode(d scale.Decoder) error {
	ok, err := readOption(d)
	if err != nil {
		return err
	}
	u.Writers = nil
	if ok {
		w, err := readAccounts(d)
		if err != nil {
			return err
		}
		u.Writers = &w
	}
	if u.Slug, err = readOptionalText(d); err != nil {
		return err
	}
	u.IpfsHash, err = readOptionalText(d)
	return err
}

func (u BlogUpdate) Encode(e scale.Encoder) error {
	return runSteps([]func() error{
		func() error { return writeOption(e, u.Writers != nil) },
		func() error {
			if u.Writers == nil {
				return nil
			}
			return writeAccounts(e, *u.Writers)
		},
		func() error { return writeOptionalText(e, u.Slug) },
		func() error { return writeOptionalText(e, u.IpfsHash) },
	})
}

type PostUpdate struct {
	BlogID   *uint64
	Slug     *string
	IpfsHash *string
}

func (u PostUpdate) IsEmpty() bool {
	return u.BlogID == nil && u.Slug == nil && u.IpfsHash == nil
}

func (u *PostUpdate) Decode(d scale.Decoder) error {
	var err error
	if u.BlogID, err = readOptionalU64(d); err != nil {
		return err
	}
	if u.Slug, err = readOptionalText(d); err != nil {
		return err
	}
	u.IpfsHash, err = readOptionalText(d)
	return err
}

func (u PostUpdate) Encode(e scale.Encoder) error {
	return runSteps([]func() error{
		func() error { return writeOptionalU64(e, u.BlogID) },
		func() error { return writeOptionalText(e, u.Slug) },
		func() error { return writeOptionalText(e, u.IpfsHash) },
	})
}

// CommentUpdate always replaces the content hash.
type CommentUpdate struct {
	IpfsHash string
}

func (u *CommentUpdate) Decode(d scale.Decoder) error {
	var err error
	u.IpfsHash, err = readText(d)
	return err
}

func (u CommentUpdate) Encode(e scale.Encoder) error {
	return writeText(e, u.IpfsHash)
}

type ProfileUpdate struct {
	Username *string
	IpfsHash *string
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.IpfsHash == nil
}

func (u *ProfileUpdate) Decode(d scale.Decoder) error {
	var err error
	if u.Username, err = readOptionalText(d); err != nil {
		return err
	}
	u.IpfsHash, err = readOptionalText(d)
	return err
}

func (u ProfileUpdate) Encode(e scale.Encoder) error {
	return runSteps([]func() error{
		func() error { return writeOptionalText(e, u.Username) },
		func() error { return writeOptionalText(e, u.IpfsHash) },
	})
}

// History records store the previous values of the fields an edit replaced.

type BlogHistoryRecord struct {
	Edited  Change
	OldData BlogUpdate
}

func (r *BlogHistoryRecord) Decode(d scale.Decoder) error {
	if err := r.Edited.Decode(d); err != nil {
		return err
	}
	return r.OldData.Decode(d)
}

func (r BlogHistoryRecord) Encode(e scale.Encoder) error {
	if err := r.Edited.Encode(e); err != nil {
		return err
	}
	return r.OldData.Encode(e)
}

type PostHistoryRecord struct {
	Edited  Change
	OldData PostUpdate
}

func (r *PostHistoryRecord) Decode(d scale.Decoder) error {
	if err := r.Edited.Decode(d); err != nil {
		return err
	}
	return r.OldData.Decode(d)
}

func (r PostHistoryRecord) Encode(e scale.Encoder) error {
	if err := r.Edited.Encode(e); err != nil {
		return err
	}
	return r.OldData.Encode(e)
}

type CommentHistoryRecord struct {
	Edited  Change
	OldData CommentUpdate
}

func (r *CommentHistoryRecord) Decode(d scale.Decoder) error {
	if err := r.Edited.Decode(d); err != nil {
		return err
	}
	return r.OldData.Decode(d)
}

func (r CommentHistoryRecord) Encode(e scale.Encoder) error {
	if err := r.Edited.Encode(e); err != nil {
		return err
	}
	return r.OldData.Encode(e)
}

type ProfileHistoryRecord struct {
	Edited  Change
	OldData ProfileUpdate
}

func (r *ProfileHistoryRecord) Decode(d scale.Decoder) error {
	if err := r.Edited.Decode(d); err != nil {
		return err
	}
	return r.OldData.Decode(d)
}

func (r ProfileHistoryRecord) Encode(e scale.Encoder) error {
	if err := r.Edited.Encode(e); err != nil {
		return err
	}
	return r.OldData.Encode(e)
}
