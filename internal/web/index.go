package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

//go:embed assets/console.js
var consoleJS string

type IndexProps struct {
	Version  string
	Fallback string
}

// Index is the Query Console page. Streaming and state live in console.js;
// the server only renders the shell.
func Index(p IndexProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		cfg, err := json.Marshal(map[string]string{"fallback": p.Fallback})
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(w, indexHTML,
			templ.EscapeString(p.Version),
			cfg,
			consoleJS,
		)
		return err
	})
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="soup-gateway %s">
<title>Is This Soup?</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 42rem; margin: 4rem auto; padding: 0 1rem; text-align: center; }
#query { font-size: 2rem; text-align: center; }
#answer-panel { text-align: left; margin-top: 2rem; }
#answer.raw { white-space: pre-wrap; }
</style>
</head>
<body>
<main>
<form id="ask-form">
<h1>Is <input id="query" type="text" autocomplete="off" placeholder="ramen"> soup?</h1>
<button id="ask-button" type="submit" disabled>Ask the Question</button>
</form>
<section id="answer-panel" hidden>
<h3>The Soup Oracle Says:</h3>
<div id="answer" class="raw"></div>
</section>
<footer><p>The ultimate question for the modern culinary philosopher</p></footer>
</main>
<script id="console-config" type="application/json">%s</script>
<script>%s</script>
</body>
</html>
`
