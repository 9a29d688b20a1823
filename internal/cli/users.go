package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/archivist/internal/archivist"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	*RootOptions
	reactions      int
	channelType    string
	respectConsent bool
}

// NewAnalyzeCommand scores a message the way the message intake would and
// archives it. Consent is bypassed unless --respect-consent is given.
func NewAnalyzeCommand(root *RootOptions) *cobra.Command {
	opts := &analyzeOptions{RootOptions: root}

	cmd := &cobra.Command{
		Use:   "analyze <author-id> <message...>",
		Short: "Analyze a message for highlight potential",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := archivist.Message{
				AuthorID:    args[0],
				Content:     strings.Join(args[1:], " "),
				ChannelType: opts.channelType,
				Reactions:   opts.reactions,
			}
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				res, err := s.svc.Analyze(ctx, msg, archivist.AnalyzeOptions{BypassConsent: !opts.respectConsent})
				if err != nil {
					return err
				}
				return s.out.Print(res, func(w io.Writer) {
					printAnalysis(w, res)
				})
			})
		},
	}

	cmd.Flags().IntVar(&opts.reactions, "reactions", 0, "number of reactions on the message")
	cmd.Flags().StringVar(&opts.channelType, "channel-type", "text", "channel type label stored with the highlight")
	cmd.Flags().BoolVar(&opts.respectConsent, "respect-consent", false, "skip the message when the author has not opted in")

	return cmd
}

func printAnalysis(w io.Writer, res archivist.AnalysisResult) {
	keywords := "none"
	if len(res.Keywords) > 0 {
		keywords = strings.Join(res.Keywords, ", ")
	}
	status := "no highlight"
	if res.IsHighlight {
		status = "highlight"
	}

	fmt.Fprintf(w, "Highlight score: %.1f%%\n", res.HighlightScore*100)
	fmt.Fprintf(w, "Sentiment:       %.2f\n", res.SentimentScore)
	fmt.Fprintf(w, "Reactions:       %d\n", res.ReactionCount)
	fmt.Fprintf(w, "Keywords:        %s\n", keywords)
	fmt.Fprintf(w, "Status:          %s\n", status)
}

// NewConsentCommand groups the opt-in subcommands.
func NewConsentCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consent",
		Short: "Manage a user's consent to highlight analysis",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <user-id> <true|false>",
		Short: "Record an opt-in or opt-out",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			allow, err := strconv.ParseBool(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "consent must be true or false", err)
			}
			return root.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.svc.SetConsent(ctx, args[0], allow); err != nil {
					return err
				}
				state, err := s.svc.CheckConsent(ctx, args[0])
				if err != nil {
					return err
				}
				return printConsent(s.out, state.String())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status <user-id>",
		Short: "Show the stored consent decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd, func(ctx context.Context, s *session) error {
				state, err := s.svc.CheckConsent(ctx, args[0])
				if err != nil {
					return err
				}
				return printConsent(s.out, state.String())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <user-id>",
		Short: "Forget the consent decision so the user is asked again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.svc.ResetConsent(ctx, args[0]); err != nil {
					return err
				}
				return printConsent(s.out, "unset")
			})
		},
	})

	return cmd
}

func printConsent(out *OutputFormatter, state string) error {
	return out.Print(map[string]string{"state": state}, func(w io.Writer) {
		fmt.Fprintf(w, "Consent: %s\n", state)
	})
}

// NewPointsCommand prints a user's points record.
func NewPointsCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "points <user-id>",
		Short: "Show a user's points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd, func(ctx context.Context, s *session) error {
				p, err := s.svc.GetUserPoints(ctx, args[0])
				if err != nil {
					return err
				}
				return s.out.Print(p, func(w io.Writer) {
					fmt.Fprintf(w, "Points:             %d\n", p.Points)
					fmt.Fprintf(w, "Highlights created: %d\n", p.HighlightsCreated)
					fmt.Fprintf(w, "Votes cast:         %d\n", p.VotesCast)
				})
			})
		},
	}
}

// NewLeaderboardCommand prints the users with the most points.
func NewLeaderboardCommand(root *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the points leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return NewExitError(ExitCommandError, "limit must be positive")
			}
			return root.run(cmd, func(ctx context.Context, s *session) error {
				board, err := s.svc.GetLeaderboard(ctx, limit)
				if err != nil {
					return err
				}
				return s.out.Print(board, func(w io.Writer) {
					if len(board) == 0 {
						fmt.Fprintln(w, "No points awarded yet.")
						return
					}
					for i, p := range board {
						fmt.Fprintf(w, "%2d. %s  %d points, %d highlights\n", i+1, shortID(p.UserID), p.Points, p.HighlightsCreated)
					}
				})
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", archivist.DefaultLeaderboardLimit, "number of entries")

	return cmd
}

// shortID keeps the tail of a hashed id, enough to tell entries apart.
func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return "..." + id[len(id)-6:]
}
