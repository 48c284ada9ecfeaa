// Command generate-token mints an access token for the image API.
package main

import (
	"flag"
	"fmt"
	"imageBackend/internal/config"
	"imageBackend/internal/lib/jwt"
	"os"
	"slices"
	"strings"
)

func main() {
	var (
		username string
		groups   string
	)

	flag.StringVar(&username, "user", "", "token subject")
	flag.StringVar(&groups, "groups", jwt.GroupUser, "comma separated groups: admin, user, guest")

	cfg := config.MustLoad()

	if username == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		os.Exit(2)
	}

	var list []string
	for _, g := range strings.Split(groups, ",") {
		g = strings.TrimSpace(g)
		if !slices.Contains([]string{jwt.GroupAdmin, jwt.GroupUser, jwt.GroupGuest}, g) {
			fmt.Fprintf(os.Stderr, "unknown group %q\n", g)
			os.Exit(2)
		}
		list = append(list, g)
	}

	token, err := jwt.NewToken(username, list, cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(token)
}
