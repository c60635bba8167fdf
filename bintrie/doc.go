// Package bintrie implements a path-compressed binary trie (PATRICIA style)
// keyed by bitseq.Seq, with one value per distinct (bits, length) key.
//
// The trie stores keys of different lengths at once, which is what makes it
// usable as an IP routing table: 10.0.0.0/8 and 10.1.0.0/16 are distinct
// keys and a lookup can ask for the longest stored prefix of a full-length
// address.
//
// Two node kinds make up the tree:
//
//   - a data node represents a stored key; its depth equals the key length;
//   - a glue node is purely structural, created at the bit position where
//     two stored keys first diverge. A glue node always has both children,
//     a glue node with a single child would be redundant and is spliced out.
//
// Every leaf is a data node and a tree holding n keys never has more than
// 2n-1 nodes.
//
// Because of path compression a node's depth does not always equal the true
// common-prefix length along its path, so insertion descends heuristically,
// then computes the first differing bit against the landed key and walks
// back up to the real divergence point. For the same reason the
// longest-prefix lookup collects candidate data nodes on the way down and
// verifies them deepest-first against the actual key bits.
//
// The trie is not safe for concurrent mutation; wrap it in a lock if
// concurrent access is needed.
package bintrie
