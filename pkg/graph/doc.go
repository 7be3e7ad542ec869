// Package graph defines the scene graph produced by evaluating a menu
// description. The graph is an immutable DAG of ring segment buttons,
// placement transforms and menu groups.
package graph
