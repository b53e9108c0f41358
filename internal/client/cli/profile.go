package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// WhoAmI prints the current user's profile, fetching it if no snapshot is
// cached yet.
func (a *App) WhoAmI(ctx context.Context) error {
	user := a.session.GetUser(ctx)
	if user == nil {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("Name:   %s\n", user.Name)
	fmt.Printf("Email:  %s\n", user.Email)
	if user.Role != "" {
		fmt.Printf("Role:   %s\n", user.Role)
	}
	if user.Avatar != "" {
		fmt.Printf("Avatar: %s\n", user.Avatar)
	}
	return nil
}

// EditProfile prompts for updated profile fields and submits them. Empty
// name keeps the current one; email is mandatory. An avatar image can be
// attached by entering a local file path, or skipped with an empty line.
func (a *App) EditProfile(ctx context.Context) error {
	current := a.session.GetUser(ctx)
	if current == nil {
		fmt.Println("Not logged in.")
		return nil
	}

	name, err := getSimpleText(a.reader, fmt.Sprintf("Enter name [%s]", current.Name), os.Stdout)
	if err != nil {
		return err
	}
	if name == "" {
		name = current.Name
	}

	email, err := getSimpleText(a.reader, fmt.Sprintf("Enter email [%s]", current.Email), os.Stdout)
	if err != nil {
		return err
	}
	if email == "" {
		email = current.Email
	}

	avatarPath, err := getSimpleText(a.reader, "Avatar image path (empty to skip)", os.Stdout)
	if err != nil {
		return err
	}

	var (
		avatar     io.Reader
		avatarName string
	)
	if avatarPath != "" {
		f, err := os.Open(avatarPath)
		if err != nil {
			log.Printf("Cannot open avatar file: %s", err.Error())
			return err
		}
		defer f.Close()
		avatar = f
		avatarName = filepath.Base(avatarPath)
	}

	if err := a.session.UpdateProfile(ctx, name, email, avatar, avatarName); err != nil {
		log.Printf("Profile update unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Profile updated.")
	return nil
}
