package sqlinline

const QInsertComplaint = `--sql e9ba64c0-377f-456f-95e6-0947a82e0db5
insert into complaints (id, title, category, location, description, image, added_by, status, date_created, original_target, target_remaining, fund_collected, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::text, $9::timestamptz, $10::bigint, $11::bigint, $12::bigint, $13::timestamptz, $14::timestamptz);
`

const QSelectComplaintByID = `--sql 58888cf1-fca3-4b03-ae98-b2891970d3c4
select id::text, title, category, location, description, image, added_by, status, date_created, original_target, target_remaining, fund_collected, created_at, updated_at
from complaints
where id = $1::uuid;
`

const QSelectComplaintByTitle = `--sql ae04632e-f4cb-4686-8bd3-38c6eabbaeec
select id::text, title, category, location, description, image, added_by, status, date_created, original_target, target_remaining, fund_collected, created_at, updated_at
from complaints
where lower(title) = lower($1::text)
limit 1;
`

const QListComplaints = `--sql 99b30f37-8cb2-4e2a-82ae-e7d9efbf863b
select id::text, title, category, location, description, image, added_by, status, date_created, original_target, target_remaining, fund_collected, created_at, updated_at
from complaints
order by created_at, id;
`

const QUpdateComplaintDetails = `--sql d89ef2bb-8732-4854-9c2c-e390952d8cd8
update complaints
set title = $2::text,
    category = $3::text,
    location = $4::text,
    description = $5::text,
    image = $6::text,
    added_by = $7::text,
    status = $8::text,
    date_created = $9::timestamptz,
    updated_at = now()
where id = $1::uuid
returning id::text, title, category, location, description, image, added_by, status, date_created, original_target, target_remaining, fund_collected, created_at, updated_at;
`

const QDeleteComplaint = `--sql 39f894ec-69ca-4f63-9e3d-fb72d69c1aee
delete from complaints
where id = $1::uuid;
`

// QAdjustComplaint applies signed deltas in one statement, flooring the
// remaining target at zero, and returns the pre-update remaining value last.
const QAdjustComplaint = `--sql c61bc322-1f8c-482c-ba69-2473cbf46c98
with prev as (
    select id, target_remaining
    from complaints
    where id = $1::uuid
    for update
)
update complaints c
set fund_collected = c.fund_collected + $2::bigint,
    target_remaining = greatest(c.target_remaining + $3::bigint, 0),
    updated_at = now()
from prev
where c.id = prev.id
returning c.id::text, c.title, c.category, c.location, c.description, c.image, c.added_by, c.status, c.date_created, c.original_target, c.target_remaining, c.fund_collected, c.created_at, c.updated_at, prev.target_remaining;
`
