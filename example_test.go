package tidyframe_test

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tidyframe"
)

func printColumn(df *tidyframe.DataFrame, name string) {
	col, _ := df.Column(name)
	cells := make([]string, col.Len())
	for i := range cells {
		if col.IsNull(i) {
			cells[i] = "null"
		} else {
			cells[i] = col.GetAsString(i)
		}
	}
	fmt.Printf("%s: %s\n", name, strings.Join(cells, " "))
}

func ExamplePipe() {
	mem := memory.NewGoAllocator()
	df := households(mem)
	defer df.Release()

	result, err := tidyframe.Pipe(df,
		tidyframe.Keep("category == red"),
		tidyframe.Create(
			tidyframe.Def("c", "b + 1"),
			tidyframe.Def("b", "income * 2"),
		),
		tidyframe.Select("name", "b", "c"),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer result.Release()

	printColumn(result, "name")
	printColumn(result, "b")
	printColumn(result, "c")
	// Output:
	// name: Alice Charlie Frank
	// b: 100 130 140
	// c: 101 131 141
}

func ExampleFrom() {
	df := households(memory.NewGoAllocator())
	defer df.Release()

	result, err := tidyframe.From(df).
		GroupBy("category").
		Summarise(tidyframe.Def("best", "max(income)")).
		Arrange(tidyframe.Desc("best")).
		Collect()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer result.Release()

	printColumn(result, "category")
	printColumn(result, "best")
	// Output:
	// category: blue red green
	// best: 90 70 40
}

func ExampleCreate_unresolved() {
	df := households(memory.NewGoAllocator())
	defer df.Release()

	_, err := tidyframe.Pipe(df, tidyframe.Create(tidyframe.Def("x", "y + 1")))
	fmt.Println(errors.Is(err, tidyframe.ErrColumnDoesNotExist))
	// Output:
	// true
}
