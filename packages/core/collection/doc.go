// Package collection builds the folder tree of a request collection.
//
// A collection is a directory of .http files, nested folders and
// environment files. Scan turns it into a Tree of Nodes; Walk visits the
// tree depth-first without recursion so arbitrarily deep folder nesting is
// safe.
package collection
