package browser

// refAttribute tags every collected candidate so a locator can address it
// again inside the same frame.
const refAttribute = "data-agent-ref"

const pingScript = `() => { void document.body; return document.readyState; }`

const textContentScript = `() => document.body ? document.body.innerText : ''`

// collectElementsScript lists interactable candidates in document order.
// Keys of each entry match the JSON form of entity.ElementInfo.
const collectElementsScript = `() => {
	const selector = [
		'a[href]', 'button', 'input:not([type="hidden"])', 'select', 'textarea', 'summary',
		'[role="button"]', '[role="link"]', '[role="tab"]', '[role="menuitem"]',
		'[role="checkbox"]', '[role="radio"]', '[role="switch"]', '[role="option"]',
		'[role="combobox"]', '[role="searchbox"]', '[role="textbox"]',
		'[contenteditable="true"]', '[onclick]', '[tabindex]:not([tabindex="-1"])'
	].join(', ');

	const implicitRoles = { a: 'link', button: 'button', select: 'combobox', textarea: 'textbox', summary: 'button' };
	const inputRoles = {
		checkbox: 'checkbox', radio: 'radio', search: 'searchbox', range: 'slider',
		submit: 'button', button: 'button', reset: 'button', image: 'button'
	};

	const clip = (s, n) => (s || '').replace(/\s+/g, ' ').trim().substring(0, n);

	const labelFor = (el) => {
		if (el.labels && el.labels.length > 0) {
			return clip(el.labels[0].innerText, 100);
		}
		const by = el.getAttribute('aria-labelledby');
		if (by) {
			const target = document.getElementById(by.split(' ')[0]);
			if (target) return clip(target.innerText, 100);
		}
		return '';
	};

	const isVisible = (el, rect) => {
		const style = window.getComputedStyle(el);
		return rect.width > 0 &&
			rect.height > 0 &&
			style.display !== 'none' &&
			style.visibility !== 'hidden' &&
			style.opacity !== '0';
	};

	document.querySelectorAll('[` + refAttribute + `]').forEach(el => el.removeAttribute('` + refAttribute + `'));

	const result = [];
	let n = 0;

	document.querySelectorAll(selector).forEach(el => {
		n++;
		const ref = 'e' + n;
		el.setAttribute('` + refAttribute + `', ref);

		const tag = el.tagName.toLowerCase();
		const rect = el.getBoundingClientRect();
		const visible = isVisible(el, rect);
		const inputType = tag === 'input' ? (el.type || 'text').toLowerCase() : '';
		const role = el.getAttribute('role') ||
			(tag === 'input' ? (inputRoles[inputType] || 'textbox') : (implicitRoles[tag] || ''));

		const ariaLabel = clip(el.getAttribute('aria-label'), 100);
		const buttonValue = ['submit', 'button', 'reset'].includes(inputType) ? clip(el.value, 100) : '';
		const img = el.querySelector ? el.querySelector('img[alt]') : null;

		result.push({
			ref: ref,
			tag: tag,
			role: role,
			name: ariaLabel || buttonValue,
			text: tag === 'input' || tag === 'select' ? '' : clip(el.innerText || el.textContent, 200),
			label: labelFor(el),
			placeholder: clip(el.getAttribute('placeholder'), 100),
			title: clip(el.getAttribute('title'), 100),
			alt: clip(el.getAttribute('alt') || (img ? img.getAttribute('alt') : ''), 100),
			input_type: inputType,
			autocomplete: clip(el.getAttribute('autocomplete'), 50).toLowerCase(),
			field_name: clip(el.getAttribute('name'), 100),
			visible: visible,
			enabled: !el.disabled && el.getAttribute('aria-disabled') !== 'true',
			bounding_box: visible ? { x: rect.left, y: rect.top, width: rect.width, height: rect.height } : null
		});
	});

	return result;
}`

// windowScrollScript scrolls the main window by a delta or to an edge and
// reports the position before and after.
const windowScrollScript = `(req) => {
	const pos = () => ({ x: window.scrollX, y: window.scrollY });
	const from = pos();
	const root = document.scrollingElement || document.documentElement;

	switch (req.edge) {
	case 'top':
		window.scrollTo(window.scrollX, 0);
		break;
	case 'bottom':
		window.scrollTo(window.scrollX, root.scrollHeight);
		break;
	default:
		window.scrollBy(req.dx, req.dy);
	}

	return { from: from, to: pos() };
}`

// hitTestScript reports which element receives a pointer event at the
// centre of the target, and the owner attributes when that is an iframe.
const hitTestScript = `(el) => {
	const rect = el.getBoundingClientRect();
	const x = rect.left + rect.width / 2;
	const y = rect.top + rect.height / 2;
	const top = document.elementFromPoint(x, y);

	if (!top || top === el || el.contains(top) || top.contains(el)) {
		return { covered: false };
	}

	const out = { covered: true, tag: top.tagName.toLowerCase() };

	if (out.tag === 'iframe') {
		out.frame = {
			name: top.getAttribute('name') || '',
			aria_label: top.getAttribute('aria-label') || '',
			title: top.getAttribute('title') || ''
		};
		out.src = top.getAttribute('src') || '';
	}

	return out;
}`
