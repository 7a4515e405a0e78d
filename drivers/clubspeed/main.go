package main

import (
	olake "github.com/datazip-inc/olake-clubspeed"
	driver "github.com/datazip-inc/olake-clubspeed/drivers/clubspeed/internal"
)

func main() {
	olake.RegisterDriver(&driver.Clubspeed{})
}
