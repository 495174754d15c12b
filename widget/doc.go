// Package widget describes what an application shows.
//
// An application's View returns a tree of [Element] values built from
// [Text], [Button], [Column], [Row], [Container] and [Space]. [Build] runs a
// single layout pass over the tree and flattens it into [Primitive] values
// ([Quad] and [Label]) that a renderer draws in order.
//
//	view := widget.Container(
//		widget.Column(
//			widget.Button("Increment"),
//			widget.Text("2").Size(50),
//			widget.Button("Decrement"),
//		).Spacing(10).Align(widget.AlignCenter),
//	).Center()
package widget
