package reportingdb

const listOrders = `
SELECT o.id::text, o.representative_id, o.order_date, o.total_amount, o.total,
       COALESCE(o.clinic_id, ''), COALESCE(c.name, '')
FROM orders o
LEFT JOIN clinics c ON c.id = o.clinic_id AND c.tenant_id = o.tenant_id
WHERE o.tenant_id = $1 AND o.representative_id = $2
ORDER BY o.order_date NULLS LAST, o.id`

const listOrderItems = `
SELECT order_id::text, COALESCE(product_id, ''), COALESCE(product_name, ''), price, quantity
FROM order_items
WHERE order_id::text = ANY($1)
ORDER BY order_id, line_no`

const listVisits = `
SELECT v.id::text, v.representative_id, v.visit_date,
       COALESCE(v.clinic_id, ''), COALESCE(c.name, '')
FROM visits v
LEFT JOIN clinics c ON c.id = v.clinic_id AND c.tenant_id = v.tenant_id
WHERE v.tenant_id = $1 AND v.representative_id = $2
ORDER BY v.visit_date NULLS LAST, v.id`

const listCollections = `
SELECT k.id::text, k.representative_id, k.collection_date, k.amount,
       COALESCE(k.clinic_id, ''), COALESCE(c.name, '')
FROM collections k
LEFT JOIN clinics c ON c.id = k.clinic_id AND c.tenant_id = k.tenant_id
WHERE k.tenant_id = $1 AND k.representative_id = $2
ORDER BY k.collection_date NULLS LAST, k.id`

const getRepresentative = `
SELECT id, tenant_id, name, COALESCE(email, ''), COALESCE(region, ''), active
FROM representatives
WHERE tenant_id = $1 AND id = $2`

const activeRepresentatives = `
SELECT tenant_id, id
FROM representatives
WHERE active
ORDER BY tenant_id, id`
