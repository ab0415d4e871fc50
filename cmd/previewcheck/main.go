// Package main provides previewcheck, which shows how a farlinker link
// looks to each link-preview crawler.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iconidentify/farlinker/internal/meta"
)

var version = "dev"

// agent is a crawler identity to impersonate.
type agent struct {
	Name      string
	UserAgent string
}

var agents = []agent{
	{"apple", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_11_1) AppleWebKit/601.2.4 (KHTML, like Gecko) Version/9.0.1 Safari/601.2.4 facebookexternalhit/1.1 Facebot Twitterbot/1.0"},
	{"whatsapp", "WhatsApp/2.23.20.0 A"},
	{"telegram", "TelegramBot (like TwitterBot)"},
	{"facebook", "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)"},
	{"linkedin", "LinkedInBot/1.0 (compatible; Mozilla/5.0; Apache-HttpClient +http://www.linkedin.com)"},
	{"twitter", "Twitterbot/1.0"},
	{"discord", "Mozilla/5.0 (compatible; Discordbot/2.0; +https://discordapp.com)"},
	{"slack", "Slackbot-LinkExpanding 1.0 (+https://api.slack.com/robots)"},
	{"browser", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"},
}

// previewKeys are printed in this order; other tags follow alphabetically.
var previewKeys = []string{
	"title",
	"og:title",
	"og:description",
	"og:image",
	"og:image:width",
	"og:image:height",
	"og:site_name",
	"twitter:card",
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the previewcheck command.
func newRootCmd() *cobra.Command {
	var (
		only    []string
		timeout time.Duration
		all     bool
	)

	cmd := &cobra.Command{
		Use:     "previewcheck <url>",
		Short:   "Show the preview each platform gets for a farlinker link",
		Long:    "Fetch a farlinker link with the User-Agent of each supported link-preview crawler and print the redirect or the extracted Open Graph and Twitter tags.",
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := selectAgents(only)
			if err != nil {
				return err
			}

			client := &http.Client{
				Timeout: timeout,
				CheckRedirect: func(req *http.Request, via []*http.Request) error {
					return http.ErrUseLastResponse
				},
			}

			out := cmd.OutOrStdout()
			for _, a := range selected {
				res, err := check(cmd.Context(), client, args[0], a)
				if err != nil {
					fmt.Fprintf(out, "== %s\n   error: %v\n\n", a.Name, err)
					continue
				}
				printResult(out, a, res, all)
			}
			return nil
		},
	}

	cmd.SetVersionTemplate("previewcheck version {{.Version}}\n")
	cmd.Flags().StringSliceVar(&only, "agent", nil, "Only check these agents (e.g. apple,whatsapp)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	cmd.Flags().BoolVar(&all, "all", false, "Print every extracted tag instead of the summary set")

	return cmd
}

func selectAgents(names []string) ([]agent, error) {
	if len(names) == 0 {
		return agents, nil
	}
	var out []agent
	for _, n := range names {
		found := false
		for _, a := range agents {
			if strings.EqualFold(a.Name, n) {
				out = append(out, a)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown agent %q", n)
		}
	}
	return out, nil
}

// result is what one crawler saw.
type result struct {
	Status   int
	Location string
	Tags     meta.Tags
}

func check(ctx context.Context, client *http.Client, url string, a agent) (*result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", a.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	res := &result{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
	}
	if resp.StatusCode == http.StatusOK {
		tags, err := meta.ReadTags(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		res.Tags = tags
	}
	return res, nil
}

func printResult(w io.Writer, a agent, res *result, all bool) {
	fmt.Fprintf(w, "== %s (%d)\n", a.Name, res.Status)
	if res.Location != "" {
		fmt.Fprintf(w, "   redirect: %s\n", res.Location)
	}

	printed := make(map[string]bool, len(previewKeys))
	for _, k := range previewKeys {
		if v, ok := res.Tags[k]; ok {
			fmt.Fprintf(w, "   %s: %s\n", k, oneLine(v))
			printed[k] = true
		}
	}
	if all {
		rest := make([]string, 0, len(res.Tags))
		for k := range res.Tags {
			if !printed[k] {
				rest = append(rest, k)
			}
		}
		sort.Strings(rest)
		for _, k := range rest {
			fmt.Fprintf(w, "   %s: %s\n", k, oneLine(res.Tags[k]))
		}
	}
	fmt.Fprintln(w)
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}
