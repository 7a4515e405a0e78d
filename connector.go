package olake

import (
	"os"

	"github.com/datazip-inc/olake-clubspeed/protocol"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
	"github.com/datazip-inc/olake-clubspeed/utils/safego"
	_ "github.com/datazip-inc/olake-clubspeed/writers/parquet" // registering parquet writer
	_ "github.com/datazip-inc/olake-clubspeed/writers/sqlite"  // registering sqlite writer
	_ "github.com/datazip-inc/olake-clubspeed/writers/stdout"  // registering stdout writer
)

func RegisterDriver(driver protocol.Driver) {
	defer safego.Recovery(true)

	// Execute the root command
	err := protocol.CreateRootCommand(true, driver).Execute()
	if err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
