package main

import (
	"bytes"
	"os"
	"text/template"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

type PageData struct {
	CSS string
	JS  string
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)

	cssMin := minifyFile(m, "text/css", "assets/style.css")
	jsMin := minifyFile(m, "text/javascript", "assets/script.js")

	svgMin := minifyFile(m, "image/svg+xml", "assets/favicon.svg")
	if err := os.WriteFile("assets/favicon.min.svg", []byte(svgMin), 0644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write favicon")
	}

	htmlRaw, err := os.ReadFile("assets/index.html.tpl")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read HTML template")
	}

	tmpl, err := template.New("index").Parse(string(htmlRaw))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse HTML template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, PageData{CSS: cssMin, JS: jsMin}); err != nil {
		log.Fatal().Err(err).Msg("Failed to render HTML template")
	}

	finalHTML, err := m.String("text/html", buf.String())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to minify HTML")
	}

	if err := os.WriteFile("assets/index.html", []byte(finalHTML), 0644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write page")
	}

	log.Info().
		Int("css", len(cssMin)).
		Int("js", len(jsMin)).
		Int("html", len(finalHTML)).
		Msg("Minify done")
}

func minifyFile(m *minify.M, mediatype, path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to read asset")
	}

	out, err := m.String(mediatype, string(raw))
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to minify asset")
	}
	return out
}
