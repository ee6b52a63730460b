package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

func main() {
	var (
		inPath  = flag.String("in", "", "Input shader (plain for pack, gzip for unpack).")
		outPath = flag.String("out", "", "Output file.")
		mode    = flag.String("mode", "pack", "pack|unpack.")
		level   = flag.Int("level", gzip.BestCompression, "gzip level (pack mode only).")
	)
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		fatalf("usage: shaderpack -mode pack -in frag.kage -out frag.kage.gz [-level 9]\n       shaderpack -mode unpack -in frag.kage.gz -out frag.kage")
	}

	switch strings.ToLower(*mode) {
	case "pack":
		if err := pack(*inPath, *outPath, *level); err != nil {
			fatalf("pack: %v", err)
		}
	case "unpack":
		if err := unpack(*inPath, *outPath); err != nil {
			fatalf("unpack: %v", err)
		}
	default:
		fatalf("unknown mode: %s", *mode)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func pack(inPath, outPath string, level int) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	zw, err := gzip.NewWriterLevel(out, level)
	if err != nil {
		_ = out.Close()
		return err
	}
	zw.Name = filepath.Base(inPath)

	if _, err := io.Copy(zw, in); err != nil {
		_ = zw.Close()
		_ = out.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func unpack(inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	defer zr.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, zr); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
