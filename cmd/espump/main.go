// Command espump streams every document matching a query out of an
// Elasticsearch index to stdout, one JSON source per line.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lesomnus/xli"
	"github.com/lesomnus/xli/arg"
	"github.com/lesomnus/xli/flg"
	"github.com/rs/zerolog"

	"github.com/lunehart/esstream/pkg/client"
	"github.com/lunehart/esstream/pkg/scroll"
	"github.com/lunehart/esstream/pkg/stream"
	"github.com/lunehart/esstream/pkg/token"
)

func main() {
	c := NewCmdPump()
	if err := c.Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "espump exited with error:", err)
		os.Exit(1)
	}
}

func NewCmdPump() *xli.Command {
	return &xli.Command{
		Name:  "espump",
		Brief: "stream documents from an Elasticsearch index to stdout",

		Flags: flg.Flags{
			&flg.String{Name: "url", Alias: 'u'},
			&flg.String{Name: "query", Alias: 'q'},
			&flg.String{Name: "keep-alive"},
			&flg.String{Name: "source"},
			&flg.String{Name: "api-key-file"},
			&flg.Int64{Name: "size"},
			&flg.Switch{Name: "verbose", Alias: 'v'},
		},
		Args: arg.Args{
			&arg.String{
				Name: "index",
			},
		},

		Handler: xli.OnRun(func(ctx context.Context, cmd *xli.Command, next xli.Next) error {
			var (
				url        string
				query      string
				keepAlive  string
				source     string
				apiKeyFile string
				size       int64
				verbose    bool
			)
			flg.VisitP(cmd, "url", &url)
			flg.VisitP(cmd, "query", &query)
			flg.VisitP(cmd, "keep-alive", &keepAlive)
			flg.VisitP(cmd, "source", &source)
			flg.VisitP(cmd, "api-key-file", &apiKeyFile)
			flg.VisitP(cmd, "size", &size)
			flg.Visit(cmd, "verbose", func(v bool) {
				verbose = v
			})

			index := arg.MustGet[string](cmd, "index")

			if url == "" {
				url = "http://127.0.0.1:9200"
			}
			if query == "" {
				query = `{"match_all":{}}`
			}
			if size == 0 {
				size = 1000
			}

			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				With().Timestamp().Logger()
			if !verbose {
				log = log.Level(zerolog.InfoLevel)
			}

			opts := []client.Option{client.WithLogger(log)}
			if apiKeyFile != "" {
				tp, err := token.NewFile(apiKeyFile)
				if err != nil {
					return fmt.Errorf("read api key: %w", err)
				}
				opts = append(opts, client.WithToken(tp))
			}
			kc := client.New(url, opts...)

			settings := scroll.Settings{
				Index:     index,
				KeepAlive: keepAlive,
				PageSize:  int(size),
				Params: map[string]string{
					"query": query,
					"sort":  `["_doc"]`,
				},
			}
			if source != "" {
				settings.SourceFields = strings.Split(source, ",")
			}

			sc := scroll.New[json.RawMessage](ctx, kc, settings,
				scroll.WithLogger[json.RawMessage](log))
			docs := stream.NewAsync[scroll.Hit[json.RawMessage]](sc)
			defer docs.Stop()

			out := bufio.NewWriter(os.Stdout)
			defer out.Flush()

			count := 0
			for hit := range docs.ResultChan() {
				out.Write(hit.Source)
				out.WriteByte('\n')
				count++
			}
			if err := docs.Err(); err != nil {
				return fmt.Errorf("scroll: %w", err)
			}

			log.Info().Int("docs", count).Msg("done")

			return next(ctx)
		}),
	}
}
