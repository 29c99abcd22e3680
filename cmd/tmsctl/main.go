// tmsctl is a small CLI for the TMS API. It keeps one session on disk and
// silently refreshes the access token when the server rejects it.
//
// Usage:
//
//	tmsctl [-s server] [-f session-file] command [args]
//
// Commands:
//
//	register <email> <password> [role]
//	login <email> <password>
//	me
//	shipments
//	logout
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/velotrans/tms/internal/client/api"
	"github.com/velotrans/tms/internal/client/config"
	"github.com/velotrans/tms/internal/client/session"
)

func main() {
	cfg := config.LoadConfig()

	client := api.NewClient(cfg.ServerURL)
	manager := session.NewManager(client, session.NewFileStore(cfg.SessionFile))

	args := positionalArgs(os.Args[1:])
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: tmsctl [-s server] [-f session-file] command [args]")
		os.Exit(2)
	}

	if err := run(context.Background(), client, manager, args); err != nil {
		if errors.Is(err, session.ErrExpired) {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, client *api.Client, manager *session.Manager, args []string) error {
	switch args[0] {
	case "register":
		if len(args) < 3 {
			return errors.New("usage: register <email> <password> [role]")
		}
		role := ""
		if len(args) > 3 {
			role = args[3]
		}
		payload, err := client.Register(ctx, args[1], args[2], role)
		if err != nil {
			return err
		}
		manager.SetSession(payload)
		fmt.Printf("registered %s (%s)\n", payload.User.Email, payload.User.Role)
		return nil

	case "login":
		if len(args) < 3 {
			return errors.New("usage: login <email> <password>")
		}
		payload, err := client.Login(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		manager.SetSession(payload)
		fmt.Printf("logged in as %s (%s)\n", payload.User.Email, payload.User.Role)
		return nil

	case "me":
		var user *api.User
		err := manager.Do(ctx, func(ctx context.Context, token string) error {
			var callErr error
			user, callErr = client.Me(ctx, token)
			return callErr
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\t%s\n", user.ID, user.Email, user.Role)
		return nil

	case "shipments":
		var list *api.ShipmentList
		err := manager.Do(ctx, func(ctx context.Context, token string) error {
			var callErr error
			list, callErr = client.ListShipments(ctx, token)
			return callErr
		})
		if err != nil {
			return err
		}
		for _, s := range list.Items {
			fmt.Printf("%s\t%s -> %s\t%s\n", s.ID, s.PickupLocation, s.DeliveryLocation, s.Status)
		}
		fmt.Printf("total: %d\n", list.Total)
		return nil

	case "logout":
		if token := manager.RefreshToken(); token != "" {
			if err := client.Logout(ctx, token); err != nil {
				return err
			}
		}
		manager.Clear()
		fmt.Println("logged out")
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// positionalArgs strips the config flags (and their values) so the command
// and its arguments remain.
func positionalArgs(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-s" || arg == "-f" {
			i++
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		out = append(out, arg)
	}
	return out
}
