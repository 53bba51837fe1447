package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tailbits/jsonapi"
	"github.com/tailbits/jsonapi/openapi"
)

var errDryRun = errors.New("dry run")

// queryFlags are shared by the commands that compose URLs.
type queryFlags struct {
	fields     []string
	sort       []string
	filters    []string
	filterExpr string
	params     []string
	extras     []string
	attrs      []string
	meta       []string
	pages      int
	id         string
	method     string
}

func (f *queryFlags) register(cmd *cobra.Command, set ...string) {
	flags := cmd.Flags()
	for _, name := range set {
		switch name {
		case "fields":
			flags.StringSliceVar(&f.fields, "fields", nil, "Sparse fieldset, comma separated")
		case "sort":
			flags.StringSliceVar(&f.sort, "sort", nil, "Sort keys; prefix with - for descending")
		case "filter":
			flags.StringArrayVar(&f.filters, "filter", nil, "Field filter as key=value (repeatable)")
			flags.StringVar(&f.filterExpr, "filter-expr", "", "Raw filter expression")
		case "param":
			flags.StringArrayVar(&f.params, "param", nil, "Custom query parameter as key=value (repeatable)")
		case "extra":
			flags.StringArrayVar(&f.extras, "extra", nil, "Path template parameter as key=value (repeatable)")
		case "attr":
			flags.StringArrayVar(&f.attrs, "attr", nil, "Attribute as key=value; JSON values are decoded (repeatable)")
		case "meta":
			flags.StringArrayVar(&f.meta, "meta", nil, "Request metadata as key=value (repeatable)")
		case "pages":
			flags.IntVar(&f.pages, "pages", 1, "Number of pages to follow through next links")
		case "id":
			flags.StringVar(&f.id, "id", "", "Resource id")
		case "method":
			flags.StringVar(&f.method, "method", "", "HTTP method, POST by default")
		}
	}
}

// query starts a Query for the type named on the command line: a registered
// type when the name resolves, else a raw wire type.
func query(c *jsonapi.Client, typ string) (*jsonapi.Query, *jsonapi.Type) {
	if t, ok := c.ResolveType(typ); ok {
		return jsonapi.NewQuery().Model(t), t
	}
	return jsonapi.NewQuery().Type(typ), nil
}

func (f *queryFlags) apply(q *jsonapi.Query) error {
	q.Fields(f.fields...)

	for _, s := range f.sort {
		if attr, ok := strings.CutPrefix(s, "-"); ok {
			q.SortBy(attr, jsonapi.Desc)
		} else {
			q.SortBy(s, jsonapi.Asc)
		}
	}

	filters, err := keyValues(f.filters, "=")
	if err != nil {
		return fmt.Errorf("--filter: %w", err)
	}
	for _, kv := range filters {
		q.Where(kv[0], kv[1])
	}
	if f.filterExpr != "" {
		q.FilterExpr(f.filterExpr)
	}

	params, err := keyValues(f.params, "=")
	if err != nil {
		return fmt.Errorf("--param: %w", err)
	}
	for _, kv := range params {
		q.Param(kv[0], kv[1])
	}

	extras, err := keyValues(f.extras, "=")
	if err != nil {
		return fmt.Errorf("--extra: %w", err)
	}
	for _, kv := range extras {
		q.Extra(kv[0], kv[1])
	}

	meta, err := keyValues(f.meta, "=")
	if err != nil {
		return fmt.Errorf("--meta: %w", err)
	}
	for _, kv := range meta {
		q.Meta(kv[0], kv[1])
	}

	if f.id != "" {
		q.ID(f.id)
	}
	if f.method != "" {
		q.Method(f.method)
	}

	return nil
}

// object builds the untyped resource --attr flags describe.
func (f *queryFlags) object(c *jsonapi.Client, typ string, t *jsonapi.Type, id string) (*jsonapi.Object, error) {
	obj := &jsonapi.Object{Type: typ, ID: id, Attributes: map[string]any{}}
	if t != nil {
		obj.Type = c.TypeName(t)
	}

	attrs, err := keyValues(f.attrs, "=")
	if err != nil {
		return nil, fmt.Errorf("--attr: %w", err)
	}
	for _, kv := range attrs {
		var v any
		if err := json.Unmarshal([]byte(kv[1]), &v); err != nil {
			v = kv[1]
		}
		obj.Attributes[kv[0]] = v
	}

	return obj, nil
}

// run builds the client and Params of a command, then hands them to fn. A
// dry run ends successfully once the request is printed.
func run(cmd *cobra.Command, typ string, f *queryFlags, fn func(c *jsonapi.Client, q *jsonapi.Query, t *jsonapi.Type) error) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	q, t := query(c, typ)
	if err := f.apply(q); err != nil {
		return err
	}

	if err := fn(c, q, t); err != nil && !errors.Is(err, errDryRun) {
		return err
	}

	return nil
}

func printRaw(out io.Writer, body []byte) error {
	if len(body) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(out, string(body))
	return err
}

// listing is the printed form of a collection.
type listing struct {
	Data  []any             `json:"data"`
	Links map[string]string `json:"links,omitempty"`
}

func newListing(col *jsonapi.Collection) listing {
	l := listing{Data: col.Data, Links: map[string]string{}}
	for name, link := range map[string]*jsonapi.Link{
		jsonapi.LinkFirst: col.First,
		jsonapi.LinkLast:  col.Last,
		jsonapi.LinkPrev:  col.Prev,
		jsonapi.LinkNext:  col.Next,
	} {
		if link != nil {
			l.Links[name] = link.URL
		}
	}
	return l
}

func newFindCmd() *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "find [type] [id]",
		Short: "Fetch a single resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &f, func(c *jsonapi.Client, q *jsonapi.Query, _ *jsonapi.Type) error {
				p, err := q.ID(args[1]).Params()
				if err != nil {
					return err
				}

				ctx, cancel := commandContext(cmd)
				defer cancel()

				v, err := c.Find(ctx, p)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), v)
			})
		},
	}
	f.register(cmd, "fields", "param", "extra", "meta")

	return cmd
}

func newListCmd() *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "list [type]",
		Short: "Fetch a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &f, func(c *jsonapi.Client, q *jsonapi.Query, _ *jsonapi.Type) error {
				p, err := q.Params()
				if err != nil {
					return err
				}

				ctx, cancel := commandContext(cmd)
				defer cancel()

				col, err := c.FindAll(ctx, p)
				if err != nil {
					return err
				}
				if err := printResult(cmd.OutOrStdout(), newListing(col)); err != nil {
					return err
				}

				for page := 1; page < f.pages && col.Next != nil; page++ {
					body, err := col.Next.Fetch(ctx)
					if err != nil {
						return err
					}
					doc, err := jsonapi.DecodeDocument(body)
					if err != nil {
						return err
					}
					if col, err = c.DeserializeCollection(doc, p.Attributes); err != nil {
						return err
					}
					if err := printResult(cmd.OutOrStdout(), newListing(col)); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
	f.register(cmd, "fields", "sort", "filter", "param", "extra", "meta", "pages")

	return cmd
}

func newCreateCmd() *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "create [type]",
		Short: "Create a resource from --attr values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &f, func(c *jsonapi.Client, q *jsonapi.Query, t *jsonapi.Type) error {
				obj, err := f.object(c, args[0], t, "")
				if err != nil {
					return err
				}
				p, err := q.For(obj).Params()
				if err != nil {
					return err
				}

				ctx, cancel := commandContext(cmd)
				defer cancel()

				v, err := c.Create(ctx, p)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), v)
			})
		},
	}
	f.register(cmd, "attr", "extra", "meta")

	return cmd
}

func newUpdateCmd() *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "update [type] [id]",
		Short: "Update the --attr values of a resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &f, func(c *jsonapi.Client, q *jsonapi.Query, t *jsonapi.Type) error {
				obj, err := f.object(c, args[0], t, args[1])
				if err != nil {
					return err
				}
				p, err := q.For(obj).Params()
				if err != nil {
					return err
				}

				ctx, cancel := commandContext(cmd)
				defer cancel()

				v, err := c.Update(ctx, p)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), v)
			})
		},
	}
	f.register(cmd, "attr", "fields", "extra", "meta")

	return cmd
}

func newDeleteCmd() *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "delete [type] [id]",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &f, func(c *jsonapi.Client, q *jsonapi.Query, _ *jsonapi.Type) error {
				p, err := q.ID(args[1]).Params()
				if err != nil {
					return err
				}

				ctx, cancel := commandContext(cmd)
				defer cancel()

				body, err := c.Delete(ctx, p)
				if err != nil {
					return err
				}
				return printRaw(cmd.OutOrStdout(), body)
			})
		},
	}
	f.register(cmd, "extra", "meta")

	return cmd
}

func newActionCmd() *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "action [type] [action]",
		Short: "Run a custom action on a resource or a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &f, func(c *jsonapi.Client, q *jsonapi.Query, t *jsonapi.Type) error {
				q.Action(args[1])
				if len(f.attrs) > 0 {
					obj, err := f.object(c, args[0], t, f.id)
					if err != nil {
						return err
					}
					q.For(obj)
				}

				p, err := q.Params()
				if err != nil {
					return err
				}

				ctx, cancel := commandContext(cmd)
				defer cancel()

				body, err := c.CustomAction(ctx, p)
				if err != nil {
					return err
				}
				return printRaw(cmd.OutOrStdout(), body)
			})
		},
	}
	f.register(cmd, "attr", "filter", "extra", "meta", "id", "method")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "schema [type]",
		Short: "Print the attribute schema of a declared type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}

			t, ok := c.ResolveType(args[0])
			if !ok {
				return fmt.Errorf("type %s is not declared", args[0])
			}

			if check {
				if err := c.CheckSchema(t); err != nil {
					return err
				}
			}

			schema, err := c.AttributeSchema(t)
			if err != nil {
				return err
			}

			var v any
			if err := json.Unmarshal(schema, &v); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Fail when the schema and the type disagree")

	return cmd
}

func newOpenAPICmd() *cobra.Command {
	var (
		skipLint   bool
		endpoints  bool
		title      string
		version    string
		pathParams []string
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document of the declared types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}

			opts := []openapi.Option{
				openapi.SkipLint(skipLint),
				openapi.Info(title, version),
				openapi.PathParams(pathParams...),
			}

			if endpoints {
				records, err := openapi.Operations(c, opts...)
				if err != nil {
					return err
				}
				for _, e := range records.Endpoints(func(s string) string { return s }) {
					fmt.Fprintln(cmd.OutOrStdout(), e)
				}
				return nil
			}

			doc, err := openapi.New(c, opts...)
			if err != nil {
				return err
			}
			return printRaw(cmd.OutOrStdout(), doc)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&skipLint, "skip-lint", false, "Do not lint the generated document")
	flags.BoolVar(&endpoints, "endpoints", false, "List the documented endpoints only")
	flags.StringVar(&title, "title", "JSON:API", "Document title")
	flags.StringVar(&version, "version", "1.0.0", "Document version")
	flags.StringSliceVar(&pathParams, "path-param", nil, "Path template parameters of custom paths")

	return cmd
}

func init() {
	rootCmd.AddCommand(
		newFindCmd(),
		newListCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newActionCmd(),
		newSchemaCmd(),
		newOpenAPICmd(),
	)
}
