package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/model"
	"github.com/paperdesk/paperdesk/internal/workflow"
)

func papersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "papers",
		Short: "Browse, submit and publish papers",
	}

	cmd.AddCommand(
		papersMineCommand(),
		papersAllCommand(),
		papersPublishedCommand(),
		papersPendingCommand(),
		papersSearchCommand(),
		papersSubmitCommand(),
		papersPublishCommand(),
		papersUploadCommand(),
		papersDownloadCommand(),
	)

	return cmd
}

func printPapers(papers []model.Paper) {
	if len(papers) == 0 {
		fmt.Println("No papers.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tSTATUS\tTAGS")
	for _, p := range papers {
		status := "unpublished"
		if p.Published {
			status = "published by " + p.PublishedBy
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Title, p.AuthorUsername, status, strings.Join(p.Tags, ","))
	}
	w.Flush()
}

func papersMineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your own papers",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(a *app, cmd *cobra.Command, _ []string) error {
			dashboard := workflow.NewAuthorDashboard(a.api, a.session, a.logger)
			papers, err := dashboard.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			printPapers(papers)
			return nil
		}),
	}
}

func papersAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "List every paper",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(a *app, cmd *cobra.Command, _ []string) error {
			dashboard := workflow.NewStudentDashboard(a.api, a.logger)
			papers, err := dashboard.Load(cmd.Context())
			if err != nil {
				return err
			}
			printPapers(papers)
			return nil
		}),
	}
}

func papersPublishedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "published",
		Short: "List published papers",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(a *app, cmd *cobra.Command, _ []string) error {
			papers, err := a.api.PublishedPapers(cmd.Context())
			if err != nil {
				return err
			}
			printPapers(papers)
			return nil
		}),
	}
}

func papersPendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List papers awaiting publication",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(a *app, cmd *cobra.Command, _ []string) error {
			dashboard := workflow.NewCommitteeDashboard(a.api, a.session, a.logger)
			if err := dashboard.Refresh(cmd.Context()); err != nil {
				return err
			}
			printPapers(dashboard.Pending())
			return nil
		}),
	}
}

func papersSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search papers by title, abstract or tag",
		Args:  cobra.MaximumNArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			keyword := ""
			if len(args) > 0 {
				keyword = args[0]
			}

			dashboard := workflow.NewStudentDashboard(a.api, a.logger)
			if _, err := dashboard.Load(cmd.Context()); err != nil {
				return err
			}
			papers, err := dashboard.Search(cmd.Context(), keyword)
			if err != nil {
				return err
			}
			printPapers(papers)
			return nil
		}),
	}
}

func papersSubmitCommand() *cobra.Command {
	var (
		abstract    string
		contentFile string
		tags        string
	)

	cmd := &cobra.Command{
		Use:   "submit <title>",
		Short: "Submit a new paper",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			content := ""
			if contentFile != "" {
				data, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("failed to read content file: %w", err)
				}
				content = string(data)
			}

			dashboard := workflow.NewAuthorDashboard(a.api, a.session, a.logger)
			paper, err := dashboard.SubmitDraft(cmd.Context(), args[0], abstract, content, tags)
			if err != nil {
				return err
			}

			fmt.Printf("Submitted paper %s: %s\n", paper.ID, paper.Title)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&abstract, "abstract", "a", "", "paper abstract")
	cmd.Flags().StringVarP(&contentFile, "content", "c", "", "path to a file with the paper body")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "comma-separated tags")
	_ = cmd.MarkFlagRequired("abstract")

	return cmd
}

func papersPublishCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "publish <paper-id>",
		Short: "Publish a pending paper",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid paper id %q", args[0])
			}

			confirm := confirmPrompt(os.Stdin)
			if yes {
				confirm = nil
			}

			dashboard := workflow.NewCommitteeDashboard(a.api, a.session, a.logger)
			paper, err := dashboard.Publish(cmd.Context(), id, confirm)
			if err != nil {
				return err
			}
			if paper.ID == uuid.Nil {
				fmt.Println("Cancelled.")
				return nil
			}

			fmt.Printf("Published %s: %s\n", paper.ID, paper.Title)
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "publish without asking for confirmation")

	return cmd
}

func papersUploadCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "upload <paper-id>",
		Short: "Upload the manuscript file for one of your papers",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid paper id %q", args[0])
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open manuscript: %w", err)
			}
			defer f.Close()

			if err := a.api.UploadManuscript(cmd.Context(), id, f); err != nil {
				return err
			}

			fmt.Println("Manuscript uploaded.")
			return nil
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the manuscript file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func papersDownloadCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "download <paper-id>",
		Short: "Download a paper's manuscript",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid paper id %q", args[0])
			}

			reader, err := a.api.DownloadManuscript(cmd.Context(), id)
			if err != nil {
				return err
			}
			defer reader.Close()

			dst := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				dst = f
			}

			if _, err := io.Copy(dst, reader); err != nil {
				return fmt.Errorf("failed to write manuscript: %w", err)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the manuscript to this file instead of stdout")

	return cmd
}

// confirmPrompt reads a y/N answer from in.
func confirmPrompt(in io.Reader) workflow.ConfirmFunc {
	return func(prompt string) bool {
		fmt.Printf("%s [y/N]: ", prompt)
		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return answer == "y" || answer == "yes"
	}
}
