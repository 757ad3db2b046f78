// Minimal end-to-end check of a running gateway: sign in with SIGNER_SEED, read the blog list
// and the signer's profile, and optionally follow BLOG_ID.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"resty.dev/v3"

	"github.com/stake-plus/df-blogs/src/keys"
)

var (
	baseURL = getenv("API_URL", "http://localhost:3000/v1")
	seed    = os.Getenv("SIGNER_SEED")
	blogID  = os.Getenv("BLOG_ID")
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	signer, err := keys.NewSigner(seed, 42)
	if err != nil {
		log.Fatalf("signer: %v", err)
	}
	client := resty.New().SetBaseURL(baseURL)
	defer client.Close()

	token := signIn(client, signer)
	client.SetAuthToken(token)

	get(client, "/blogs?mode=preview")
	get(client, "/accounts/"+signer.Address())
	get(client, "/accounts/"+signer.Address()+"/notifications")

	if blogID != "" {
		res, err := client.R().Post("/follow/blog/" + blogID)
		must(res, err)
		fmt.Printf("follow blog %s: %s\n", blogID, res.String())
	}
	fmt.Println("gateway OK")
}

func signIn(client *resty.Client, signer *keys.Signer) string {
	var challenge struct {
		Nonce string `json:"nonce"`
	}
	res, err := client.R().
		SetBody(map[string]string{"address": signer.Address()}).
		SetResult(&challenge).
		Post("/auth/challenge")
	must(res, err)

	sig, err := signer.Sign([]byte(challenge.Nonce))
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	var verified struct {
		Token string `json:"token"`
	}
	res, err = client.R().
		SetBody(map[string]string{"address": signer.Address(), "signature": "0x" + hex.EncodeToString(sig)}).
		SetResult(&verified).
		Post("/auth/verify")
	must(res, err)
	return verified.Token
}

func get(client *resty.Client, path string) {
	res, err := client.R().Get(path)
	must(res, err)
	fmt.Printf("GET %s -> %d (%d bytes)\n", path, res.StatusCode(), len(res.Bytes()))
}

func must(res *resty.Response, err error) {
	if err != nil {
		log.Fatal(err)
	}
	if res.IsError() {
		log.Fatalf("%s %s: %d %s", res.Request.Method, res.Request.URL, res.StatusCode(), res.String())
	}
}
