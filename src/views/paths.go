package views

import "fmt"

// Routes of the blogs section.

func BlogPath(id uint64) string        { return fmt.Sprintf("/blogs/%d", id) }
func BlogEditPath(id uint64) string    { return fmt.Sprintf("/blogs/%d/edit", id) }
func NewPostPath(blogID uint64) string { return fmt.Sprintf("/blogs/%d/newPost", blogID) }
func PostPath(id uint64) string        { return fmt.Sprintf("/blogs/posts/%d", id) }
func PostEditPath(id uint64) string    { return fmt.Sprintf("/blogs/posts/%d/edit", id) }

func AccountPath(address string) string     { return "/blogs/accounts/" + address }
func AccountEditPath(address string) string { return "/blogs/accounts/" + address + "/edit" }

// CommentPath points at the comment anchor inside its post.
func CommentPath(postID, commentID uint64) string {
	return fmt.Sprintf("%s#comment-%d", PostPath(postID), commentID)
}
