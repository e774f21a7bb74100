// Command mesonet downloads or reads Oklahoma Mesonet MTS/MDF files and
// prints the selected variables as a table. Missing values print as "--".
//
// Usage:
//
//	mesonet fetch --site nrmn --date 20081120 --fields time,relh,tair,wspd,pres
//	mesonet fetch --date 200811201400
//	mesonet read 20081120nrmn.mts --fields tair --transpose
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
