// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

const eventTableSchema = `
create table if not exists event (
	seq integer primary key autoincrement,
	kind text not null,
	era integer not null,
	epoch integer not null,
	time integer not null,
	data blob
);

CREATE INDEX if not exists kindIndex on event(kind);
CREATE INDEX if not exists eraIndex on event(era);
`
