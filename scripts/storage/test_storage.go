package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/stake-plus/df-blogs/src/blogs"
	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
)

func main() {
	url := os.Getenv("RPC_URL")
	if url == "" {
		url = "ws://127.0.0.1:9944"
	}
	client, err := polkadot.NewClient(url, 42)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	next, err := blogs.NextBlogID(ctx, client)
	if err != nil {
		log.Fatalf("Error reading next blog id: %v", err)
	}
	log.Printf("Next blog id: %d", next)

	blogID := uint64(1)
	if len(os.Args) > 1 {
		if blogID, err = strconv.ParseUint(os.Args[1], 10, 64); err != nil {
			log.Fatalf("bad blog id: %v", err)
		}
	}

	b, err := blogs.GetBlog(ctx, client, blogID)
	if err != nil {
		log.Fatalf("Error getting blog %d: %v", blogID, err)
	}
	if b == nil {
		log.Printf("Blog %d does not exist", blogID)
		return
	}

	log.Printf("Blog %d:", blogID)
	log.Printf("  Slug: %s", b.Slug)
	log.Printf("  Owner: %s", b.Owner().Address(42))
	log.Printf("  Created: block %d", b.Created.Block)
	log.Printf("  Content: %s", b.IpfsHash)
	log.Printf("  Posts: %d", b.PostsCount)
	log.Printf("  Followers: %d", b.FollowersCount)

	postIDs, err := blogs.PostIDsByBlog(ctx, client, blogID)
	if err != nil {
		log.Fatalf("Error getting posts: %v", err)
	}
	log.Printf("  Post ids: %v", postIDs)
}
