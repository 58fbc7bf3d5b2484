package randdata_test

import (
	"fmt"

	"github.com/matzehuels/chartdeck/pkg/randdata"
)

func ExampleGenerator_Series() {
	g := randdata.NewSeeded(7)
	series, _ := g.Series("column", 2)
	for _, s := range series {
		fmt.Println(s.Name, len(s.Data))
	}
	// Output:
	// Series 1 20
	// Series 2 20
}
