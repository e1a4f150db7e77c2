package sqlinline

const QInsertContribution = `--sql 2a12df34-27a0-494f-a1db-c4e23b90de52
insert into contributions (id, complaint_id, contributor_id, amount, title, category, idempotency_key, recorded_at)
values ($1::text, $2::uuid, nullif($3::text, ''), $4::bigint, $5::text, $6::text, nullif($7::text, ''), $8::timestamptz)
returning id;
`

const QSelectContributionByKey = `--sql 9ced2d42-44f0-474f-8bef-080f84812bac
select id, complaint_id::text, contributor_id, amount, title, category, idempotency_key, recorded_at
from contributions
where idempotency_key = $1::text;
`

const QListContributions = `--sql 7b5c68a1-47d8-4f43-9fd4-0ddd7c5b4a2c
select id, complaint_id::text, contributor_id, amount, title, category, idempotency_key, recorded_at
from contributions
order by recorded_at, id;
`

const QListContributionsByContributor = `--sql c3deffc8-e28e-4889-bbeb-6656f13acf22
select id, complaint_id::text, contributor_id, amount, title, category, idempotency_key, recorded_at
from contributions
where contributor_id = $1::text
order by recorded_at, id;
`

const QListContributionsByComplaint = `--sql 25592db5-3c6d-4225-bda4-d063aed4353b
select id, complaint_id::text, contributor_id, amount, title, category, idempotency_key, recorded_at
from contributions
where complaint_id = $1::uuid
order by recorded_at, id;
`
