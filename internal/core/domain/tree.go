package domain

import "strings"

// NodeKind distinguishes folders from document leaves.
type NodeKind string

const (
	// NodeFolder is a folder node; only folders have children.
	NodeFolder NodeKind = "folder"

	// NodeDocument is a document leaf referencing exactly one document.
	NodeDocument NodeKind = "document"
)

// TreeNode is a folder or a document leaf in a knowledge base hierarchy.
type TreeNode struct {
	// ID is the unique identifier for the node.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Kind is the node kind.
	Kind NodeKind `json:"kind"`

	// Children holds the ordered child nodes. Folders only.
	Children []TreeNode `json:"children,omitempty"`

	// DocumentID references the document entity. Document leaves only.
	DocumentID string `json:"document_id,omitempty"`
}

// FolderHandle is a stable index into a FolderArena.
type FolderHandle int

// RootFolder is the handle of the implicit archive root.
const RootFolder FolderHandle = 0

// FolderArena stores folder nodes in an indexable collection referenced by
// handle, with a canonical-path lookup. Two folders sharing a display title
// can never alias because placement is by handle, not by title. The tree is
// acyclic by construction: a folder's parent always exists before it does.
type FolderArena struct {
	slots  []folderSlot
	byPath map[string]FolderHandle
	newID  func() string
}

type folderSlot struct {
	node    TreeNode
	folders []FolderHandle
	docs    []TreeNode
}

// NewFolderArena creates an arena containing only the root folder.
// newID supplies node identifiers (e.g. uuid.NewString).
func NewFolderArena(newID func() string) *FolderArena {
	a := &FolderArena{
		byPath: make(map[string]FolderHandle),
		newID:  newID,
	}
	a.slots = append(a.slots, folderSlot{
		node: TreeNode{ID: newID(), Kind: NodeFolder},
	})
	a.byPath[""] = RootFolder
	return a
}

// EnsureFolder returns the handle for the folder at the given canonical
// segment path, creating intermediate folders on demand. Repeated prefixes
// reuse the same node.
func (a *FolderArena) EnsureFolder(segments []string) FolderHandle {
	handle := RootFolder
	path := ""
	for _, seg := range segments {
		if path == "" {
			path = seg
		} else {
			path = path + "/" + seg
		}
		next, ok := a.byPath[path]
		if !ok {
			next = FolderHandle(len(a.slots))
			a.slots = append(a.slots, folderSlot{
				node: TreeNode{ID: a.newID(), Title: seg, Kind: NodeFolder},
			})
			a.slots[handle].folders = append(a.slots[handle].folders, next)
			a.byPath[path] = next
		}
		handle = next
	}
	return handle
}

// Lookup returns the handle for a canonical path, if present.
func (a *FolderArena) Lookup(path string) (FolderHandle, bool) {
	h, ok := a.byPath[strings.Trim(path, "/")]
	return h, ok
}

// AttachDocument places a document leaf under the given folder.
func (a *FolderArena) AttachDocument(h FolderHandle, leaf TreeNode) {
	a.slots[h].docs = append(a.slots[h].docs, leaf)
}

// FolderCount returns the number of folders, including the root.
func (a *FolderArena) FolderCount() int {
	return len(a.slots)
}

// Tree materializes the arena into the root's ordered children:
// subfolders in creation order, then document leaves in insertion order.
func (a *FolderArena) Tree() []TreeNode {
	return a.materialize(RootFolder)
}

func (a *FolderArena) materialize(h FolderHandle) []TreeNode {
	slot := a.slots[h]
	children := make([]TreeNode, 0, len(slot.folders)+len(slot.docs))
	for _, fh := range slot.folders {
		node := a.slots[fh].node
		node.Children = a.materialize(fh)
		children = append(children, node)
	}
	children = append(children, slot.docs...)
	return children
}
