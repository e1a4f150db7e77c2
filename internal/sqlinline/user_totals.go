package sqlinline

const QSelectUserTotal = `--sql ffdd4888-f5ff-4a9f-846c-c2bbcad22f2c
select user_id, total_contributed, created_at, updated_at
from user_totals
where user_id = $1::text;
`

// QUpsertUserTotal increments or initializes a total in one statement. The
// last column is true when the row was inserted.
const QUpsertUserTotal = `--sql 01cea7ce-9496-4d62-bb62-fbaec199a2ed
insert into user_totals (user_id, total_contributed, created_at, updated_at)
values ($1::text, $2::bigint, now(), now())
on conflict (user_id) do update set
    total_contributed = user_totals.total_contributed + excluded.total_contributed,
    updated_at = now()
returning user_id, total_contributed, created_at, updated_at, (xmax = 0) as created;
`

const QListUserTotals = `--sql b0d80810-e3e9-425b-8301-fc04fecaa9af
select user_id, total_contributed, created_at, updated_at
from user_totals
order by user_id;
`

// QSwapUserTotal replaces a total only while it still holds $2; a missing row
// counts as zero and is inserted. Returns the number of rows written.
const QSwapUserTotal = `--sql 6c393d4e-2559-4296-ab49-795a42f89360
with updated as (
    update user_totals
    set total_contributed = $3::bigint,
        updated_at = now()
    where user_id = $1::text
      and total_contributed = $2::bigint
    returning 1
), inserted as (
    insert into user_totals (user_id, total_contributed, created_at, updated_at)
    select $1::text, $3::bigint, now(), now()
    where $2::bigint = 0
      and not exists (select 1 from user_totals where user_id = $1::text)
    on conflict (user_id) do nothing
    returning 1
)
select (select count(*) from updated) + (select count(*) from inserted);
`
