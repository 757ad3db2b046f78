package blogs

// Off-chain JSON documents referenced by IpfsHash.

type BlogContent struct {
	Name  string   `json:"name"`
	Desc  string   `json:"desc"`
	Image string   `json:"image"`
	Tags  []string `json:"tags"`
}

type PostContent struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Image string   `json:"image"`
	Tags  []string `json:"tags"`
}

type CommentContent struct {
	Body string `json:"body"`
}

type ProfileContent struct {
	Fullname  string `json:"fullname"`
	Avatar    string `json:"avatar"`
	About     string `json:"about"`
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedIn"`
	Github    string `json:"github"`
	Instagram string `json:"instagram"`
}

// HashOf helpers let generic loaders read the content hash of each entity.

func BlogHash(b Blog) string       { return b.IpfsHash }
func PostHash(p Post) string       { return p.IpfsHash }
func CommentHash(c Comment) string { return c.IpfsHash }

// ProfileHash is empty for accounts without a profile; there is nothing to fetch.
func ProfileHash(s SocialAccount) string {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.IpfsHash
}
