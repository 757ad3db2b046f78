package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/stake-plus/df-blogs/src/views"
)

var out io.Writer = os.Stdout

func printJSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// show prints v as JSON with --json, and through table otherwise.
func show(v any, table func(w io.Writer)) error {
	if jsonOut {
		return printJSON(v)
	}
	table(out)
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	if len(header) > 0 {
		table.SetHeader(header)
	}
	return table
}

// fields renders label/value pairs, skipping empty values.
func fields(w io.Writer, rows [][2]string) {
	table := newTable(w)
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		table.Append([]string{r[0], r[1]})
	}
	table.Render()
}

// notReady prints the status of an entity that could not be rendered and reports whether it did.
func notReady(w io.Writer, h views.Header) bool {
	if h.Ready() {
		return false
	}
	fmt.Fprintf(w, "%s %s\n", color.YellowString(h.State), h.Message)
	return true
}

func headerRows(h views.Header) [][2]string {
	return [][2]string{{"ID", h.ID}, {"Title", h.Label}, {"Link", h.Link}}
}

func changeText(c *views.ChangeView) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%s at #%d (%s)", c.Account, c.Block, c.Time.Format("2006-01-02 15:04"))
}

func num[T ~int | ~uint16 | ~uint32 | ~uint64](n T) string {
	return strconv.FormatUint(uint64(n), 10)
}

func renderBlog(w io.Writer, b views.BlogView) {
	if notReady(w, b.Header) {
		return
	}
	rows := headerRows(b.Header)
	if p := b.Preview; p != nil {
		rows = append(rows,
			[2]string{"Slug", p.Slug},
			[2]string{"Owner", p.Owner},
			[2]string{"Posts", num(p.PostsCount)},
			[2]string{"Followers", num(p.FollowersCount)},
			[2]string{"Summary", p.Summary},
		)
	}
	if d := b.Detail; d != nil {
		rows = append(rows,
			[2]string{"Tags", strings.Join(d.Tags, ", ")},
			[2]string{"Created", changeText(&d.Created)},
			[2]string{"Updated", changeText(d.Updated)},
		)
	}
	fields(w, rows)

	if b.Detail != nil && len(b.Detail.Posts) > 0 {
		renderPosts(w, b.Detail.Posts)
	}
}

func renderBlogs(w io.Writer, list []views.BlogView) {
	table := newTable(w, "ID", "Name", "Owner", "Posts", "Followers")
	for _, b := range list {
		owner, posts, followers := "", "", ""
		if p := b.Preview; p != nil {
			owner, posts, followers = p.Owner, num(p.PostsCount), num(p.FollowersCount)
		}
		table.Append([]string{b.ID, b.Label, owner, posts, followers})
	}
	table.Render()
}

func renderPost(w io.Writer, p views.PostView) {
	if notReady(w, p.Header) {
		return
	}
	rows := headerRows(p.Header)
	if pr := p.Preview; pr != nil {
		rows = append(rows,
			[2]string{"Blog", num(pr.BlogID)},
			[2]string{"Owner", pr.Owner},
			[2]string{"Score", strconv.Itoa(pr.Score)},
			[2]string{"Comments", num(pr.Comments)},
			[2]string{"Shares", num(pr.Shares)},
			[2]string{"Summary", pr.Summary},
			[2]string{"Unsupported", pr.Unsupported},
		)
		if pr.Shared != nil {
			rows = append(rows, [2]string{"Shares post", pr.Shared.ID + " " + pr.Shared.Label})
		}
	}
	if d := p.Detail; d != nil {
		rows = append(rows,
			[2]string{"Tags", strings.Join(d.Tags, ", ")},
			[2]string{"Created", changeText(&d.Created)},
			[2]string{"Updated", changeText(d.Updated)},
		)
		if d.Vote != nil && d.Vote.Mine != "" {
			rows = append(rows, [2]string{"Your vote", d.Vote.Mine})
		}
	}
	fields(w, rows)

	if d := p.Detail; d != nil {
		if d.Body != "" {
			fmt.Fprintf(w, "\n%s\n", d.Body)
		}
		if len(d.Comments) > 0 {
			fmt.Fprintln(w)
			renderCommentTree(w, d.Comments, 0)
		}
	}
}

func renderPosts(w io.Writer, list []views.PostView) {
	table := newTable(w, "ID", "Title", "Owner", "Score", "Comments")
	for _, p := range list {
		owner, score, comments := "", "", ""
		if pr := p.Preview; pr != nil {
			owner, score, comments = pr.Owner, strconv.Itoa(pr.Score), num(pr.Comments)
		}
		table.Append([]string{p.ID, p.Label, owner, score, comments})
	}
	table.Render()
}

func renderComment(w io.Writer, c views.CommentView) {
	if notReady(w, c.Header) {
		return
	}
	rows := headerRows(c.Header)
	if p := c.Preview; p != nil {
		rows = append(rows,
			[2]string{"Post", num(p.PostID)},
			[2]string{"Owner", p.Owner},
			[2]string{"Score", strconv.Itoa(p.Score)},
			[2]string{"Created", changeText(&p.Created)},
			[2]string{"Body", p.Body},
		)
		if p.ParentID != nil {
			rows = append(rows, [2]string{"Reply to", num(*p.ParentID)})
		}
	}
	if d := c.Detail; d != nil {
		rows = append(rows, [2]string{"Updated", changeText(d.Updated)})
	}
	fields(w, rows)
}

func renderCommentTree(w io.Writer, nodes []*views.CommentNode, depth int) {
	for _, n := range nodes {
		c := n.Comment
		indent := strings.Repeat("  ", depth)
		if c.Preview == nil {
			fmt.Fprintf(w, "%s[%s] %s\n", indent, c.ID, c.State)
		} else {
			fmt.Fprintf(w, "%s[%s] %s (%d): %s\n", indent, c.ID, color.CyanString(c.Preview.Owner), c.Preview.Score, c.Preview.Body)
		}
		renderCommentTree(w, n.Replies, depth+1)
	}
}

func renderProfile(w io.Writer, p views.ProfileView) {
	if notReady(w, p.Header) {
		return
	}
	rows := headerRows(p.Header)
	if pr := p.Preview; pr != nil {
		rows = append(rows,
			[2]string{"Username", pr.Username},
			[2]string{"Followers", num(pr.Followers)},
			[2]string{"Following", num(pr.FollowingAccounts)},
			[2]string{"Following blogs", num(pr.FollowingBlogs)},
			[2]string{"Summary", pr.Summary},
		)
	}
	if d := p.Detail; d != nil {
		rows = append(rows,
			[2]string{"Full name", d.Fullname},
			[2]string{"Created", changeText(d.Created)},
			[2]string{"Updated", changeText(d.Updated)},
		)
		for _, name := range slices.Sorted(maps.Keys(d.Links)) {
			rows = append(rows, [2]string{name, d.Links[name]})
		}
	}
	fields(w, rows)

	if p.Detail != nil && len(p.Detail.Blogs) > 0 {
		renderBlogs(w, p.Detail.Blogs)
	}
}

func renderProfiles(w io.Writer, list []views.ProfileView) {
	table := newTable(w, "Address", "Name", "Followers")
	for _, p := range list {
		followers := ""
		if p.Preview != nil {
			followers = num(p.Preview.Followers)
		}
		table.Append([]string{p.ID, p.Label, followers})
	}
	table.Render()
}

func renderActivities(w io.Writer, list []views.ActivityView) {
	table := newTable(w, "Date", "Activity")
	for _, a := range list {
		table.Append([]string{a.Date.Format("2006-01-02 15:04"), a.Text()})
	}
	table.Render()
}
