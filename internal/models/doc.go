// Package models defines the domain entities of the movie catalog.
//
// Persisted documents mirror a per-user hierarchy:
//
//	users/{uid}                                  [User]
//	users/{uid}/lists/{listId}                   [List]
//	users/{uid}/lists/{listId}/listItems/{id}    [ListItem]
//
// Provider records ([Movie], [SearchResult]) come from the movie search collaborator and are
// copied into a [ListItem] when a movie is added to a list.
package models
