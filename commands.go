package main

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/ras0q/rotmgstash/internal/accounts"
	"github.com/ras0q/rotmgstash/internal/config"
	"github.com/ras0q/rotmgstash/internal/rotmgapi"
	"github.com/ras0q/rotmgstash/internal/stash"
	"github.com/ras0q/rotmgstash/internal/tui/viewmodel/preview"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const usage = `Usage: rotmg-stash [flags] [command]

Without a command the account picker is started.

Commands:
  launch <account>              log in and start the game
  launch --guid <guid>          log in with an account that is not saved
  charlist [--raw] <account>    show the character list of an account
  charlist [--raw] --all        show the character lists of all accounts
  settings                      show the settings file
  devicetoken                   print this machine's device token
  accounts list                 list saved accounts
  accounts add --name --guid    save an account; the password is prompted
  accounts remove <account>     forget an account

<account> is a saved account's name or GUID.

Flags:
  --base-url string     RotMG web API base URL
  --data-dir string     directory holding settings, accounts and logs
  --exalt-path string   directory containing "RotMG Exalt.exe"
  --log-level string    minimum log level (debug, info, warn, error)
  --debug               write a state dump alongside the log
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

type commands struct {
	cfg     config.Config
	service *stash.Service
	stdin   *os.File
	stdout  io.Writer
}

func (c *commands) run(ctx context.Context, args []string) error {
	name, args := args[0], args[1:]

	switch name {
	case "launch":
		return c.launch(ctx, args)
	case "charlist":
		return c.charList(ctx, args)
	case "settings":
		return c.settings()
	case "devicetoken":
		return c.deviceToken(ctx)
	case "accounts":
		return c.accounts(args)
	case "help":
		printUsage(c.stdout)
		return nil
	default:
		return errors.Errorf("unknown command %q", name)
	}
}

func (c *commands) launch(ctx context.Context, args []string) error {
	var guid, deviceToken string
	var passwordStdin bool

	flags := pflag.NewFlagSet("launch", pflag.ContinueOnError)
	flags.StringVar(&guid, "guid", "", "log in with this GUID instead of a saved account")
	flags.BoolVar(&passwordStdin, "password-stdin", false, "read the password of --guid from stdin")
	flags.StringVar(&deviceToken, "device-token", "", "client token to send with --guid")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var msg string
	if guid != "" {
		password, err := c.readPassword(passwordStdin)
		if err != nil {
			return err
		}

		msg, err = c.service.LaunchExalt(ctx, c.cfg.ExaltPath, rotmgapi.Credentials{
			GUID:        guid,
			Password:    password,
			DeviceToken: deviceToken,
		})
		if err != nil {
			return err
		}
	} else {
		if flags.NArg() != 1 {
			return errors.New("launch needs an account or --guid")
		}

		account, err := c.findAccount(flags.Arg(0))
		if err != nil {
			return err
		}

		msg, err = c.service.LaunchAccount(ctx, c.cfg.ExaltPath, account.GUID)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(c.stdout, msg)

	return nil
}

func (c *commands) charList(ctx context.Context, args []string) error {
	var raw, all bool

	flags := pflag.NewFlagSet("charlist", pflag.ContinueOnError)
	flags.BoolVar(&raw, "raw", false, "print the response body as is")
	flags.BoolVar(&all, "all", false, "fetch every saved account")
	if err := flags.Parse(args); err != nil {
		return err
	}

	store, err := c.service.Accounts()
	if err != nil {
		return err
	}

	var targets []accounts.Account
	if all {
		targets, err = store.List()
		if err != nil {
			return err
		}
	} else {
		if flags.NArg() != 1 {
			return errors.New("charlist needs an account or --all")
		}

		account, err := c.findAccount(flags.Arg(0))
		if err != nil {
			return err
		}
		targets = []accounts.Account{account}
	}

	logins := make([]rotmgapi.Credentials, 0, len(targets))
	for _, account := range targets {
		creds, _, err := store.Credentials(account.GUID)
		if err != nil {
			return err
		}
		logins = append(logins, creds)
	}

	bodies, err := c.service.AccountDataAll(ctx, logins)
	if err != nil {
		return err
	}

	for i, body := range bodies {
		name := cmp.Or(targets[i].Name, targets[i].GUID)
		if raw {
			if len(bodies) > 1 {
				fmt.Fprintf(c.stdout, "== %s ==\n", name)
			}
			fmt.Fprintln(c.stdout, body)
			continue
		}

		summary, err := rotmgapi.SummarizeCharList(body)
		if err != nil {
			return errors.Wrapf(err, "summarize %s", name)
		}
		printSummary(c.stdout, name, summary)
	}

	return nil
}

func printSummary(w io.Writer, name string, summary *rotmgapi.CharListSummary) {
	fmt.Fprintf(w, "%s (%d/%s characters)\n",
		cmp.Or(summary.AccountName, name),
		len(summary.Characters),
		cmp.Or(summary.MaxChars, "?"),
	)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, ch := range summary.Characters {
		fmt.Fprintf(tw, "  #%s\t%s\tlv %s\tfame %s\n", ch.ID, preview.ClassName(ch.ObjectType), ch.Level, cmp.Or(ch.Fame, "0"))
	}
	_ = tw.Flush()
}

func (c *commands) settings() error {
	st, err := c.service.Settings()
	if err != nil {
		return err
	}

	status := "not set"
	if st.SecretKey != nil {
		status = fmt.Sprintf("set (%d hex chars)", len(*st.SecretKey))
	}

	fmt.Fprintf(c.stdout, "path: %s\nsecret_key: %s\n", c.service.SettingsPath(), status)

	return nil
}

func (c *commands) deviceToken(ctx context.Context) error {
	token, err := c.service.DeviceToken(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.stdout, token)

	return nil
}

func (c *commands) accounts(args []string) error {
	if len(args) == 0 {
		return errors.New("accounts needs one of list, add, remove")
	}

	store, err := c.service.Accounts()
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		list, err := store.List()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tGUID\tPASSWORD")
		for _, a := range list {
			where := accounts.PasswordStoreKeyring
			if a.Password != "" {
				where = accounts.PasswordStoreFile
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name, a.GUID, where)
		}

		return tw.Flush()

	case "add":
		var name, guid string
		var passwordStdin bool

		flags := pflag.NewFlagSet("accounts add", pflag.ContinueOnError)
		flags.StringVar(&name, "name", "", "display name")
		flags.StringVar(&guid, "guid", "", "account GUID (e-mail or steamworks:<id>)")
		flags.BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		if guid == "" {
			return errors.New("accounts add needs --guid")
		}

		password, err := c.readPassword(passwordStdin)
		if err != nil {
			return err
		}

		where, err := store.Add(cmp.Or(name, guid), guid, password)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.stdout, "saved %s (password in %s)\n", cmp.Or(name, guid), where)

		return nil

	case "remove":
		if len(args) != 2 {
			return errors.New("accounts remove needs an account")
		}

		account, err := c.findAccount(args[1])
		if err != nil {
			return err
		}

		if err := store.Remove(account.GUID); err != nil {
			return err
		}

		fmt.Fprintf(c.stdout, "removed %s\n", cmp.Or(account.Name, account.GUID))

		return nil

	default:
		return errors.Errorf("unknown accounts command %q", args[0])
	}
}

// findAccount looks a saved account up by GUID, then by name.
func (c *commands) findAccount(key string) (accounts.Account, error) {
	store, err := c.service.Accounts()
	if err != nil {
		return accounts.Account{}, err
	}

	list, err := store.List()
	if err != nil {
		return accounts.Account{}, err
	}

	if account, ok := lo.Find(list, func(a accounts.Account) bool { return a.GUID == key }); ok {
		return account, nil
	}
	if account, ok := lo.Find(list, func(a accounts.Account) bool { return a.Name == key }); ok {
		return account, nil
	}

	return accounts.Account{}, errors.Wrapf(accounts.ErrAccountNotFound, "%q", key)
}

func (c *commands) readPassword(fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(c.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", errors.Wrap(err, "read password")
		}

		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(c.stdout, "Password: ")
	b, err := term.ReadPassword(int(c.stdin.Fd()))
	fmt.Fprintln(c.stdout)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}

	return string(b), nil
}
