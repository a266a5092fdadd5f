// Command adduser registers an account directly against the auth database.
//
//	adduser -d <dsn> -user alice -first Alice -last Liddell -role admin
//
// The password is read from the terminal without echo.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "adduser:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()

	var in models.NewUser
	var role string
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.StringVar(&in.UserName, "user", "", "username")
	fs.StringVar(&in.FirstName, "first", "", "first name")
	fs.StringVar(&in.LastName, "last", "", "last name")
	fs.StringVar(&in.PhoneNumber, "phone", "", "phone number")
	fs.StringVar(&role, "role", string(models.RoleUser), "role (user, admin)")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-user", "-first", "-last", "-phone", "-role"})); err != nil {
		return err
	}
	in.Role = models.Role(role)
	if in.UserName == "" {
		return fmt.Errorf("-user is required")
	}

	password, err := readPassword()
	if err != nil {
		return err
	}
	in.Password = password

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, logging.Nop())
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.Users().Register(ctx, in)
	if err != nil {
		return err
	}

	fmt.Printf("registered %s id=%d role=%s\n", user.UserName, user.ID, user.Role)
	return nil
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password prompt needs a terminal")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
