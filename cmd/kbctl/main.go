package main

import (
	"fmt"
	"os"

	"github.com/forlandeivan/search-engine-sub011/internal/adapters/driven/archive/multiformat"
	configfile "github.com/forlandeivan/search-engine-sub011/internal/adapters/driven/config/file"
	"github.com/forlandeivan/search-engine-sub011/internal/adapters/driven/convert/remote"
	"github.com/forlandeivan/search-engine-sub011/internal/adapters/driven/storage/sqlite"
	vectormemory "github.com/forlandeivan/search-engine-sub011/internal/adapters/driven/vector/memory"
	"github.com/forlandeivan/search-engine-sub011/internal/adapters/driving/cli"
	"github.com/forlandeivan/search-engine-sub011/internal/converters"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
	"github.com/forlandeivan/search-engine-sub011/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	store, err := sqlite.NewStore(configStore.GetString("storage.data_dir", ""))
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	var remoteConverter driven.RemoteConverter
	if url := configStore.GetString("converter.url", ""); url != "" {
		remoteConverter = remote.NewConverter(remote.Config{BaseURL: url})
	}

	converter := converters.NewDefault(remoteConverter)

	importService := services.NewImportService(
		converter,
		multiformat.New(),
		store.DocumentStore(),
	)

	indexingService := services.NewIndexingService(
		store.DocumentStore(),
		store.ActionStore(),
		vectormemory.New(),
	)

	cli.SetServices(cli.Services{
		Importer:    importService,
		Indexing:    indexingService,
		ConfigStore: configStore,
	})

	return cli.Execute()
}
