// memoctl is a small terminal client for the blankpage API. The login
// token is persisted under the user config dir so invocations share a
// session.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/EmptyEmeraldTablet/blankpage/internal/client"
)

var serverURL string

func main() {
	root := &cobra.Command{
		Use:           "memoctl",
		Short:         "Memo and cloud-clipboard client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "server base URL")

	root.AddCommand(
		loginCmd(),
		logoutCmd(),
		listCmd(),
		showCmd(),
		newCmd(),
		editCmd(),
		rmCmd(),
		clipCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func defaultServer() string {
	if s := os.Getenv("BLANKPAGE_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func newAPI() (client.Client, client.Session, error) {
	path, err := client.DefaultSessionPath()
	if err != nil {
		return nil, nil, err
	}
	session := client.NewFileSession(path)
	api := client.NewHTTPClient(serverURL)
	if t := session.Token(); t != "" {
		api.SetAuthToken(t)
	}
	return api, session, nil
}

func loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with the shared password",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, session, err := newAPI()
			if err != nil {
				return err
			}
			if password == "" {
				fmt.Fprint(os.Stderr, "password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}
			token, err := api.Login(context.Background(), password)
			if err != nil {
				if errors.Is(err, client.ErrInvalidCredentials) {
					return errors.New("wrong password")
				}
				return err
			}
			if err := session.SetToken(token); err != nil {
				return err
			}
			fmt.Println("logged in")
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "shared password (prompted if omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, session, err := newAPI()
			if err != nil {
				return err
			}
			_ = api.Logout(context.Background())
			return session.Clear()
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List memos, newest-updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := newAPI()
			if err != nil {
				return err
			}
			memos, err := api.ListMemos(context.Background())
			if err != nil {
				return friendly(err)
			}
			for _, m := range memos {
				fmt.Printf("%6d  %s  %s\n", m.ID, m.UpdatedAt.Local().Format("2006-01-02 15:04"), firstLine(m.Content))
			}
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := newAPI()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := api.GetMemo(context.Background(), id)
			if err != nil {
				return friendly(err)
			}
			fmt.Println(m.Content)
			return nil
		},
	}
}

func newCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <content>",
		Short: "Create a memo ('-' reads stdin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := newAPI()
			if err != nil {
				return err
			}
			content, err := contentArg(args)
			if err != nil {
				return err
			}
			m, err := api.CreateMemo(context.Background(), content)
			if err != nil {
				return friendly(err)
			}
			fmt.Printf("created memo %d\n", m.ID)
			return nil
		},
	}
}

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <content>",
		Short: "Replace a memo's content ('-' reads stdin)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := newAPI()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			content, err := contentArg(args[1:])
			if err != nil {
				return err
			}
			m, err := api.UpdateMemo(context.Background(), id, content)
			if err != nil {
				return friendly(err)
			}
			fmt.Printf("updated memo %d\n", m.ID)
			return nil
		},
	}
}

func rmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := newAPI()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes && !confirm(fmt.Sprintf("delete memo %d?", id)) {
				return nil
			}
			if err := api.DeleteMemo(context.Background(), id); err != nil {
				return friendly(err)
			}
			fmt.Printf("deleted memo %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func clipCmd() *cobra.Command {
	var clear bool
	cmd := &cobra.Command{
		Use:   "clip [text]",
		Short: "Read or overwrite the cloud clipboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := newAPI()
			if err != nil {
				return err
			}
			ctx := context.Background()
			if clear {
				_, err := api.SaveClip(ctx, "")
				return friendly(err)
			}
			if len(args) == 1 {
				_, err := api.SaveClip(ctx, args[0])
				return friendly(err)
			}
			c, err := api.GetClip(ctx)
			if err != nil {
				return friendly(err)
			}
			if c.Text == nil {
				fmt.Fprintln(os.Stderr, "(no clip)")
				return nil
			}
			fmt.Print(*c.Text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "save an empty clip")
	return cmd
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > 72 {
		s = string(r[:72]) + "…"
	}
	return s
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid memo id %q", s)
	}
	return id, nil
}

func contentArg(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		b, err := readAllStdin()
		if err != nil {
			return "", err
		}
		return b, nil
	}
	return strings.Join(args, " "), nil
}

func readAllStdin() (string, error) {
	var sb strings.Builder
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for sc.Scan() {
		sb.WriteString(sc.Text())
		sb.WriteByte('\n')
	}
	return sb.String(), sc.Err()
}

func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func friendly(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrUnauthorized):
		return errors.New("session expired, run: memoctl login")
	case errors.Is(err, client.ErrNotFound):
		return errors.New("no such memo")
	case errors.Is(err, client.ErrTimeout):
		return errors.New("server did not respond in time")
	default:
		return err
	}
}
