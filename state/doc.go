// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages account balances and program storage.
// It follows the flow as bellow:
//
//	        o
//	        |
//	[ revertable state ]
//	        |
//	 [ stacked map ] -> [ journal ] -> [ commit(batch) ] -> [ kv store ]
//	        |
//	 [ lru cache ]
//	        |
//	 [ kv store ]
//
// Checkpoints are levels of the stacked map, so a revert discards every write made
// after the checkpoint was taken. Nothing reaches the kv store before Commit.
package state
