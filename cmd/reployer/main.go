package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"reployer/internal/di"
	"reployer/internal/structures"
	"syscall"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "force debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage:\n  %s [flags]\n  %s [flags] download <url>\n\nFlags:\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	var err error
	switch flag.Arg(0) {
	case "":
		err = serve(flags)
	case "download":
		err = download(flags, flag.Arg(1))
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(flags *structures.CliFlags) error {
	app, err := di.InitApp(flags)
	if err != nil {
		return err
	}
	return app.Run()
}

func download(flags *structures.CliFlags, url string) error {
	if url == "" {
		return fmt.Errorf("download: missing url")
	}
	downloader, err := di.InitDownloader(flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	last := -1
	path, err := downloader.Download(ctx, url, func(downloaded, total int64, percent int) {
		if total > 0 && percent != last {
			last = percent
			fmt.Printf("\r%3d%% (%d/%d bytes)", percent, downloaded, total)
		}
	})
	if last >= 0 {
		fmt.Println()
	}
	if err != nil {
		return err
	}
	fmt.Printf("Saved to %s\n", path)
	return nil
}
