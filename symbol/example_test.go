package symbol_test

import (
	"fmt"

	"github.com/roach88/symtab/symbol"
)

var (
	exampleSymbols = symbol.NewTable("github.com/roach88/symtab/symbol_test")

	methodGet  = exampleSymbols.Site("GET")
	methodPost = exampleSymbols.Site("POST")
)

func init() { exampleSymbols.Register() }

func Example() {
	req := symbol.New("GET")

	switch req {
	case methodGet.Symbol():
		fmt.Println("get")
	case methodPost.Symbol():
		fmt.Println("post")
	}
	// Output: get
}

func ExampleSymbol_ToOpaque() {
	s := symbol.New("handle")

	v := s.ToOpaque()
	back, ok := symbol.FromOpaque(v)

	fmt.Println(ok, back == s, back)
	// Output: true true handle
}

func ExampleRegistry_Update() {
	reg := symbol.NewRegistry()
	reg.Update(func(g *symbol.WriteGuard) {
		for _, w := range []string{"b", "a", "b"} {
			g.Intern(w)
		}
	})

	fmt.Println(reg.Len(), reg.Texts())
	// Output: 2 [a b]
}
