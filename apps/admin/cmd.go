package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/masomo-market/apps/api/echo"
	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/notification"
	"github.com/trezcool/masomo-market/core/user"
)

var errHelp = errors.New("help provided")

type notificationCreator interface {
	Create(ctx context.Context, nn notification.NewNotification) (notification.Notification, error)
}

type commandLine struct {
	conf        *core.Config
	db          *sqlx.DB
	usrRepo     user.Repository
	invalidator notification.Invalidator
	notifSvc    notificationCreator
	out         io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Fprintln(cli.out, "  clearmenu -user ID [-role ROLE] - drop the cached sidebar menu of a user")
	fmt.Fprintln(cli.out, "  notify -user ID -type TYPE -title TITLE [-message MESSAGE] - send a notification to a user")
	fmt.Fprintln(cli.out, "  token -user ID [-role ROLE] [-ttl DURATION] - issue an API token for a user")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	clearMenuCmd := flag.NewFlagSet("clearmenu", flag.ExitOnError)
	clearMenuUser := clearMenuCmd.Int64("user", 0, "The user's ID.")
	clearMenuRole := clearMenuCmd.String("role", "", "The user's role. Looked up when empty.")

	notifyCmd := flag.NewFlagSet("notify", flag.ExitOnError)
	notifyUser := notifyCmd.Int64("user", 0, "The recipient's ID.")
	notifyType := notifyCmd.String("type", "", "The notification type.")
	notifyTitle := notifyCmd.String("title", "", "The notification title.")
	notifyMessage := notifyCmd.String("message", "", "The notification message.")

	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenUser := tokenCmd.Int64("user", 0, "The user's ID.")
	tokenRole := tokenCmd.String("role", "", "The user's role. Looked up when empty.")
	tokenTTL := tokenCmd.Duration("ttl", echoapi.DefaultTokenLifetime, "The token lifetime.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "clearmenu":
		if err := clearMenuCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *clearMenuUser <= 0 {
			clearMenuCmd.Usage()
			return errHelp
		}
		return cli.clearMenu(*clearMenuUser, *clearMenuRole)
	case "notify":
		if err := notifyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *notifyUser <= 0 || *notifyType == "" || *notifyTitle == "" {
			notifyCmd.Usage()
			return errHelp
		}
		return cli.notify(notification.NewNotification{
			UserID:  *notifyUser,
			Type:    notification.Type(*notifyType),
			Title:   *notifyTitle,
			Message: *notifyMessage,
		})
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenUser <= 0 {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenUser, *tokenRole, *tokenTTL)
	default:
		cli.printUsage()
		return errHelp
	}
}

// identity returns the user's identity, resolving its role from the database when role is empty.
func (cli *commandLine) identity(id int64, role string) (user.Identity, error) {
	if role != "" {
		r := user.ParseRole(role)
		if r == user.RoleUnknown {
			return user.Identity{}, fmt.Errorf("unknown role %q", role)
		}
		return user.Identity{ID: id, Role: r}, nil
	}
	return cli.usrRepo.GetIdentity(context.Background(), id)
}
