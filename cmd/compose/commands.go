package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shorlog-studio/internal/auth"
	"github.com/shorlog-studio/internal/config"
)

func addComposeFlags(cmd *cobra.Command, o *composeOptions) {
	cmd.Flags().StringArrayVar(&o.ratios, "ratio", nil, "Crop ratio as INDEX=RATIO (ORIGINAL, 1:1, 4:5, 16:9)")
	cmd.Flags().StringArrayVar(&o.moves, "move", nil, "Move an image as FROM:TO")
	cmd.Flags().StringVar(&o.content, "content", "", "Shorlog text")
	cmd.Flags().StringSliceVar(&o.tags, "tag", nil, "Hashtags, repeatable or comma separated")
	cmd.Flags().BoolVar(&o.aiTags, "ai-tags", false, "Ask the AI assistant for hashtags")
	cmd.Flags().BoolVar(&o.saveDraft, "save-draft", false, "Save a draft instead of publishing")
	cmd.Flags().StringVar(&o.link, "link", "", "Blog id to link after publishing")
	cmd.Flags().BoolVar(&o.skipLink, "skip-link", false, "Publish without linking")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func newCommand() *cobra.Command {
	o := &composeOptions{}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Upload images and publish a shorlog",
		Example: `  compose new --file a.jpg --file b.png --url https://example.com/c.jpg \
    --ratio 0=1:1 --content "hello" --tag demo --link <blog-id>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(o.files)+len(o.urls) == 0 {
				return fmt.Errorf("at least one --file or --url is required")
			}

			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := signalContext()
			defer cancel()

			if err := s.wizard.Mount(ctx); err != nil {
				return err
			}
			if n := len(s.wizard.Drafts()); n > 0 {
				fmt.Fprintf(os.Stderr, "You have %d saved drafts, see `compose drafts list`\n", n)
				s.wizard.StartFresh()
			}

			if err := o.stage(s.wizard); err != nil {
				return err
			}
			return o.run(ctx, s)
		},
	}

	cmd.Flags().StringArrayVar(&o.files, "file", nil, "Image file to upload, repeatable")
	cmd.Flags().StringArrayVar(&o.urls, "url", nil, "Hosted image url, repeatable")
	addComposeFlags(cmd, o)
	return cmd
}

func draftsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage saved drafts",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.wizard.Mount(cmd.Context()); err != nil {
				return err
			}
			tiles := s.wizard.Drafts()
			if len(tiles) == 0 {
				fmt.Println("No drafts")
				return nil
			}
			for _, t := range tiles {
				stale := ""
				if t.Stale {
					stale = " (stale)"
				}
				fmt.Printf("%s  %s  %d images%s\n  %s\n",
					t.Draft.ID, t.Draft.CreatedAt.Format("2006-01-02 15:04"), len(t.Draft.ImageIDs), stale, preview(t.Draft.Content))
			}
			return nil
		},
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.wizard.Mount(cmd.Context()); err != nil {
				return err
			}
			confirm := func() bool {
				if yes {
					return true
				}
				answer := prompt(fmt.Sprintf("Delete draft %s? [y/N] ", args[0]))
				return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
			}
			deleted, err := s.wizard.DeleteDraft(cmd.Context(), args[0], confirm)
			if err != nil {
				return err
			}
			if deleted {
				fmt.Printf("Deleted draft %s\n", args[0])
			}
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	o := &composeOptions{}
	resumeCmd := &cobra.Command{
		Use:   "resume [id]",
		Short: "Load a draft and publish it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := signalContext()
			defer cancel()

			if err := s.wizard.Mount(ctx); err != nil {
				return err
			}
			if err := s.wizard.LoadDraft(ctx, args[0]); err != nil {
				return err
			}
			return o.run(ctx, s)
		},
	}
	addComposeFlags(resumeCmd, o)

	cmd.AddCommand(listCmd, deleteCmd, resumeCmd)
	return cmd
}

func tokenCommand() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is required")
			}
			token, err := auth.New(cfg.JWTSecret, cfg.TokenTTL).GenerateToken(userID)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id to put in the token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if r := []rune(content); len(r) > 60 {
		return string(r[:60]) + "…"
	}
	return content
}
