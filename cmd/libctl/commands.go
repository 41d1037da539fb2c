package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"libraryapi/internal/book"
	"libraryapi/internal/borrowing"
)

type services struct {
	books  *book.Service
	ledger *borrowing.Service
}

// cli carries what every command needs. Services are connected lazily so
// that help and flag errors never touch the database.
type cli struct {
	out      io.Writer
	asJSON   bool
	connect  func(ctx context.Context) (*services, func(), error)
	svc      *services
	shutdown func()
}

func (c *cli) services(ctx context.Context) (*services, error) {
	if c.svc != nil {
		return c.svc, nil
	}
	svc, shutdown, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	c.svc, c.shutdown = svc, shutdown
	return svc, nil
}

func (c *cli) close() {
	if c.shutdown != nil {
		c.shutdown()
	}
}

func newRootCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "libctl",
		Short: "Library catalog administration",
		Long: `libctl manages the library catalog and borrowing ledger directly against the
configured database, using the same rules as the HTTP API.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&c.asJSON, "json", false, "Print results as JSON")
	cmd.AddCommand(
		newBooksCmd(c),
		newBorrowCmd(c),
		newReturnCmd(c),
		newAvailabilityCmd(c),
		newHistoryCmd(c),
		newOpenCmd(c),
		newArchivedCmd(c),
		newArchiveCmd(c, true),
		newArchiveCmd(c, false),
	)
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func (c *cli) printJSON(v any) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newBooksCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Inspect and delete catalog entries",
	}

	var deleted bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List active books with availability, or deleted books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			if deleted {
				books, err := svc.books.ListDeleted(cmd.Context())
				if err != nil {
					return err
				}
				if c.asJSON {
					return c.printJSON(books)
				}
				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tDELETED AT")
				for _, b := range books {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, formatTime(b.DeletedAt))
				}
				return tw.Flush()
			}

			listings, err := svc.books.ListActiveWithAvailability(cmd.Context())
			if err != nil {
				return err
			}
			if c.asJSON {
				return c.printJSON(listings)
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tGENRE\tTOTAL\tAVAILABLE")
			for _, l := range listings {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n", l.ID, l.Title, l.Author, l.Genre, l.TotalCopies, l.AvailableCopies)
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&deleted, "deleted", false, "List soft-deleted books instead")

	deleteInfo := &cobra.Command{
		Use:   "delete-info ID",
		Short: "Show whether a book can be deleted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			info, err := svc.books.GetDeleteInfo(cmd.Context(), id)
			if err != nil {
				return err
			}
			if c.asJSON {
				return c.printJSON(info)
			}
			fmt.Fprintf(c.out, "%s by %s: %d total, %d borrowed, %d available, safe to delete: %t\n",
				info.Book.Title, info.Book.Author, info.TotalCopies, info.BorrowedCopies, info.AvailableCopies, info.CanDeleteSafely)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Soft-delete a book with no copies on loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.books.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "book %d deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, deleteInfo, del)
	return cmd
}

func newBorrowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow BOOK_ID",
		Short: "Lend one copy of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.loanAction(cmd, args[0], "borrowed", "no copy available or book not found",
				func(svc *services, ctx context.Context, id int64) (bool, error) { return svc.ledger.Borrow(ctx, id) })
		},
	}
}

func newReturnCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "return BOOK_ID",
		Short: "Return the most recently borrowed copy of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.loanAction(cmd, args[0], "returned", "no open loan or book not found",
				func(svc *services, ctx context.Context, id int64) (bool, error) { return svc.ledger.Return(ctx, id) })
		},
	}
}

func (c *cli) loanAction(cmd *cobra.Command, arg, done, refused string, op func(*services, context.Context, int64) (bool, error)) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	svc, err := c.services(cmd.Context())
	if err != nil {
		return err
	}
	ok, err := op(svc, cmd.Context(), id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("book %d: %s", id, refused)
	}
	available, err := svc.ledger.AvailableCopies(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "book %d %s, %d available\n", id, done, available)
	return nil
}

func newAvailabilityCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "availability BOOK_ID",
		Short: "Show available copies of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			n, err := svc.ledger.AvailableCopies(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, n)
			return nil
		},
	}
}

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		page, pageSize int
		q              borrowing.HistoryQuery
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Page through non-archived borrowing history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			result, err := svc.ledger.HistoryPaginated(cmd.Context(), page, pageSize, q)
			if err != nil {
				return err
			}
			if c.asJSON {
				return c.printJSON(result)
			}
			if err := c.printTransactions(result.Items); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "page %d of %d (%d total)\n", result.PageIndex, result.TotalPages, result.TotalCount)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", borrowing.DefaultPageSize, "Items per page")
	cmd.Flags().StringVarP(&q.Search, "q", "q", "", "Search title or author")
	cmd.Flags().StringVar(&q.Status, "status", "", "borrowed or returned")
	cmd.Flags().StringVar(&q.Date, "date", "", "today, week, month or year")
	return cmd
}

func newOpenCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "List loans that have not been returned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			txs, err := svc.ledger.UnreturnedTransactions(cmd.Context())
			if err != nil {
				return err
			}
			if c.asJSON {
				return c.printJSON(txs)
			}
			return c.printTransactions(txs)
		},
	}
}

func newArchivedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "archived",
		Short: "List archived transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			txs, err := svc.ledger.ArchivedTransactions(cmd.Context())
			if err != nil {
				return err
			}
			if c.asJSON {
				return c.printJSON(txs)
			}
			return c.printTransactions(txs)
		},
	}
}

func newArchiveCmd(c *cli, archive bool) *cobra.Command {
	use, short, verb := "archive TX_ID", "Archive a transaction", "archived"
	if !archive {
		use, short, verb = "unarchive TX_ID", "Restore an archived transaction", "unarchived"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			op := svc.ledger.Unarchive
			if archive {
				op = svc.ledger.Archive
			}
			ok, err := op(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("transaction %d not found", id)
			}
			fmt.Fprintf(c.out, "transaction %d %s\n", id, verb)
			return nil
		},
	}
}

func (c *cli) printTransactions(txs []borrowing.Transaction) error {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBOOK\tTITLE\tBORROWED\tRETURNED\tARCHIVED")
	for _, t := range txs {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%t\n",
			t.ID, t.BookID, t.BookTitle, t.BorrowedDate.Format(time.DateTime), formatTime(t.ReturnedDate), t.IsArchived)
	}
	return tw.Flush()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateTime)
}
