package scene_test

import (
	"fmt"

	"github.com/matzehuels/haplonet/pkg/network"
	"github.com/matzehuels/haplonet/pkg/scene"
)

func Example() {
	net, _ := network.BuildFromTree([]network.TreeEntry{
		{ID: "H1", Weight: 10},
		{ID: "H2", Parent: "H1", Mutations: 1, Weight: 5},
		{ID: "H3", Parent: "H1", Mutations: 2, Weight: 3},
	}, network.Options{})

	c, _ := scene.New(net, scene.DefaultConfig())
	defer c.Close()
	c.Relayout()
	c.Settle(10000)

	_ = c.Merge("H3", "H1")
	c.Settle(10000)
	fmt.Println(net.Len(), net.Node("H1").Weight, c.State())

	_ = c.Undo()
	fmt.Println(net.Len(), net.Node("H1").Weight, c.State())
	// Output:
	// 2 13 static
	// 3 10 static
}
