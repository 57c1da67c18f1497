// vibractl is a small ops CLI for poking a running vibra instance.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	c := &client{HTTP: &http.Client{Timeout: 15 * time.Second}}

	root := &cobra.Command{
		Use:           "vibractl",
		Short:         "Operations CLI for a running vibra server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.BaseURL, "url", envOr("VIBRA_URL", "http://localhost:3000"), "server base URL")
	root.PersistentFlags().StringVar(&c.Token, "token", os.Getenv("VIBRA_TOKEN"), "bearer access token")
	root.PersistentFlags().StringVarP(&c.OutFormat, "output", "o", "json", "output format: json|text")

	root.AddCommand(
		&cobra.Command{
			Use:   "health",
			Short: "Check liveness and readiness",
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, path := range []string{"/healthz", "/readyz"} {
					status, body, err := c.do(http.MethodGet, path, nil)
					if err != nil {
						return err
					}
					fmt.Printf("%s: ", path)
					c.print(status, body)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "me",
			Short: "Show the account behind --token",
			RunE: func(cmd *cobra.Command, args []string) error {
				status, body, err := c.do(http.MethodGet, "/api/auth/me", nil)
				if err != nil {
					return err
				}
				c.print(status, body)
				if status != http.StatusOK {
					return fmt.Errorf("unexpected status %d", status)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Revoke the session behind --token",
			RunE: func(cmd *cobra.Command, args []string) error {
				status, body, err := c.do(http.MethodPost, "/api/auth/logout", nil)
				if err != nil {
					return err
				}
				c.print(status, body)
				return nil
			},
		},
		func() *cobra.Command {
			cmd := &cobra.Command{
				Use:   "reset-request <email>",
				Short: "Trigger a password recovery email",
				Args:  cobra.ExactArgs(1),
				RunE: func(cmd *cobra.Command, args []string) error {
					body, _ := json.Marshal(map[string]string{"email": args[0]})
					status, resp, err := c.do(http.MethodPost, "/api/auth/reset-password", body)
					if err != nil {
						return err
					}
					c.print(status, resp)
					return nil
				},
			}
			return cmd
		}(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
