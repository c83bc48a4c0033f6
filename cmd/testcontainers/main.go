package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/brokerdb/internal/testutil"
	"github.com/localnerve/brokerdb/internal/utils"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	utils.InitLogger("testcontainers")

	usage := `
Run MariaDB and the brokerdb service in testcontainers with the environment
variables from the .env file.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		utils.Logger.Infof("Loading environment variables from %s", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			utils.Logger.Fatalf("Failed to load environment variables: %v", err)
		}
	} else {
		utils.Logger.Infof("No environment file specified, using current environment variables")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	started := make(chan *testutil.TestContainers, 1)
	go func() {
		tc, err := testutil.CreateAllTestContainers(nil)
		if err != nil {
			utils.Logger.Fatalf("Failed to create test containers: %v", err)
		}
		started <- tc
	}()

	var tc *testutil.TestContainers
	select {
	case tc = <-started:
		sig := <-sigs
		utils.Logger.Infof("Received signal: %v, terminating test containers...", sig)
	case sig := <-sigs:
		utils.Logger.Infof("Received signal: %v before startup finished", sig)
	}
	if tc != nil {
		tc.Terminate(nil)
	}
}
