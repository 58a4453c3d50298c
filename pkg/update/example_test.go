package update_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/cdnm/pkg/resolver"
	"github.com/matzehuels/cdnm/pkg/update"
)

func ExampleNext() {
	for _, spec := range []string{"2.1.0", "^2.1.0", "^1", "1.x", "next", ""} {
		next, _ := update.Next(spec, "3.0.0")
		fmt.Printf("%q -> %q\n", spec, next)
	}
	// Output:
	// "2.1.0" -> "3.0.0"
	// "^2.1.0" -> "^3.0.0"
	// "^1" -> "^3"
	// "1.x" -> "3.x"
	// "next" -> "next"
	// "" -> ""
}

func ExampleUpdater_Text() {
	u := update.New(resolver.Static{"react": "18.2.0"}, nil, nil)
	res, err := u.Text(context.Background(), `<script src="http://unpkg.com/react@16.0.0/umd/react.js"></script>`)
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Output)
	// Output:
	// <script src="https://unpkg.com/react@18.2.0/umd/react.js"></script>
}
