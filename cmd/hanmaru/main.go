// Command hanmaru converts HWP, HWPX and PDF documents to markdown with
// extracted assets, or inspects them from the command line.
//
// Usage:
//
//	hanmaru convert <input> [-o dir] [-assets name] [-no-frontmatter] [-password pw]
//	hanmaru text <input> [-password pw]
//	hanmaru images <input> [-o dir]
//	hanmaru info <input>
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/twkang/hanmaru"
	"github.com/twkang/hanmaru/markup"
	"github.com/twkang/hanmaru/model"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "convert":
		err = runConvert(os.Args[2:])
	case "text":
		err = runText(os.Args[2:])
	case "images":
		err = runImages(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msg("conversion failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `hanmaru - document converter for HWP, HWPX and PDF

Commands:
  convert <input>   convert to markdown, manifest and assets
  text <input>      print plain text to stdout
  images <input>    extract embedded images
  info <input>      print document information

Run 'hanmaru <command> -h' for command flags.
`)
}

// reportWarnings logs recoverable problems. They never affect the exit
// code: a partially damaged document still converts.
func reportWarnings(warnings []hanmaru.Warning) {
	for _, w := range warnings {
		log.Warn().Str("code", w.Code).Msg(w.Message)
	}
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	outDir := fs.String("o", ".", "output directory")
	assets := fs.String("assets", "assets", "asset directory name")
	noFront := fs.Bool("no-frontmatter", false, "omit YAML front matter")
	password := fs.String("password", "", "password for encrypted PDF input")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("convert: expected exactly one input file")
	}
	input := fs.Arg(0)

	// parse once, render markdown, manifest and assets from the same IR
	doc, warnings, err := hanmaru.Open(input).Password(*password).Document()
	reportWarnings(warnings)
	if err != nil {
		return err
	}
	opts := markup.Options{
		Source:        filepath.Base(input),
		AssetDir:      *assets,
		NoFrontMatter: *noFront,
	}
	md := markup.Render(doc, opts)
	manifest := markup.BuildManifest(doc, opts)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	mdxPath := filepath.Join(*outDir, stem+".mdx")
	if err := os.WriteFile(mdxPath, []byte(md), 0o644); err != nil {
		return err
	}
	log.Info().Str("path", mdxPath).Msg("wrote markdown")

	encoded, err := manifest.Encode()
	if err != nil {
		return err
	}
	mdmPath := filepath.Join(*outDir, stem+".mdm")
	if err := os.WriteFile(mdmPath, encoded, 0o644); err != nil {
		return err
	}
	log.Info().Str("path", mdmPath).Msg("wrote manifest")

	wrote, err := writeAssets(doc.Resources, filepath.Join(*outDir, *assets))
	if err != nil {
		return err
	}
	if wrote > 0 {
		log.Info().Int("count", wrote).Str("dir", filepath.Join(*outDir, *assets)).Msg("wrote assets")
	}
	return nil
}

func writeAssets(resources []*model.Resource, dir string) (int, error) {
	if len(resources) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	wrote := 0
	for _, res := range resources {
		if res.Error != "" || len(res.Data) == 0 {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, res.Filename()), res.Data, 0o644); err != nil {
			return wrote, err
		}
		wrote++
	}
	return wrote, nil
}

func runText(args []string) error {
	fs := flag.NewFlagSet("text", flag.ExitOnError)
	password := fs.String("password", "", "password for encrypted PDF input")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("text: expected exactly one input file")
	}
	text, warnings, err := hanmaru.Open(fs.Arg(0)).Password(*password).Text()
	reportWarnings(warnings)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func runImages(args []string) error {
	fs := flag.NewFlagSet("images", flag.ExitOnError)
	outDir := fs.String("o", "assets", "output directory")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("images: expected exactly one input file")
	}
	resources, warnings, err := hanmaru.Open(fs.Arg(0)).Resources()
	reportWarnings(warnings)
	if err != nil {
		return err
	}
	wrote, err := writeAssets(resources, *outDir)
	if err != nil {
		return err
	}
	log.Info().Int("count", wrote).Str("dir", *outDir).Msg("extracted images")
	return nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("info: expected exactly one input file")
	}
	info, warnings, err := hanmaru.Open(fs.Arg(0)).Info()
	reportWarnings(warnings)
	if err != nil {
		return err
	}
	fmt.Printf("Format:     %s\n", info.Format)
	if info.Version != "" {
		fmt.Printf("Version:    %s\n", info.Version)
	}
	if info.Title != "" {
		fmt.Printf("Title:      %s\n", info.Title)
	}
	if info.Author != "" {
		fmt.Printf("Author:     %s\n", info.Author)
	}
	fmt.Printf("Sections:   %d\n", info.Sections)
	fmt.Printf("Paragraphs: %d\n", info.Paragraphs)
	fmt.Printf("Tables:     %d\n", info.Tables)
	fmt.Printf("Resources:  %d\n", info.Resources)
	if info.Format == "HWP" {
		fmt.Printf("Compressed: %v\n", info.Compressed)
		fmt.Printf("Streams:    %s\n", strings.Join(info.Streams, ", "))
	}
	return nil
}
