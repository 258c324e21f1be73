package cmd

import (
	"fmt"

	"github.com/kiosk404/oracle/pkg/version"
)

const bannerText = `
   ___                 _
  / _ \ _ __ __ _  ___| | ___
 | | | | '__/ _' |/ __| |/ _ \
 | |_| | | | (_| | (__| |  __/
  \___/|_|  \__,_|\___|_|\___|

     Tool-using conversational assistant
`

// Banner returns the CLI banner string.
func Banner() string {
	return fmt.Sprintf("%s\n  Version: %s\n", bannerText, version.Get().String())
}
