package main

import (
	"context"
	"fmt"
	"time"

	echoapi "github.com/trezcool/masomo-market/apps/api/echo"
	"github.com/trezcool/masomo-market/core/notification"
)

func (cli *commandLine) clearMenu(userID int64, role string) error {
	identity, err := cli.identity(userID, role)
	if err != nil {
		return err
	}
	if err = cli.invalidator.Invalidate(context.Background(), identity); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "menu of %s cleared\n", identity)
	return nil
}

func (cli *commandLine) notify(nn notification.NewNotification) error {
	n, err := cli.notifSvc.Create(context.Background(), nn)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "notification %d sent to user %d\n", n.ID, n.UserID)
	return nil
}

func (cli *commandLine) token(userID int64, role string, ttl time.Duration) error {
	identity, err := cli.identity(userID, role)
	if err != nil {
		return err
	}
	token, err := echoapi.GenerateToken(echoapi.NewClaims(identity, cli.conf.AppName, ttl), cli.conf.SecretKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
