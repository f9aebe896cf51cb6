// Command gobasket mines association rules from market-basket transactions.
package main

import "github.com/dbsmedya/gobasket/cmd/gobasket/cmd"

func main() {
	cmd.Execute()
}
